package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_LoadBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "application.yaml", `
app:
  name: demo
server:
  addr: ":8080"
`)

	data, err := (&FileSource{BasePath: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	app, ok := data["app"].(map[string]any)
	if !ok || app["name"] != "demo" {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestFileSource_YmlExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "application.yml", "app:\n  name: demo\n")

	data, err := (&FileSource{BasePath: dir}).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := data["app"]; !ok {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestFileSource_ProfileOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "application.yaml", `
app:
  name: demo
server:
  addr: ":8080"
  readTimeout: 5s
`)
	writeFile(t, dir, "application.prod.yaml", `
server:
  addr: ":80"
`)

	data, err := (&FileSource{BasePath: dir, Profile: "prod"}).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	server := data["server"].(map[string]any)
	if server["addr"] != ":80" {
		t.Errorf("overlay must override addr, got %v", server["addr"])
	}
	if server["readTimeout"] != "5s" {
		t.Errorf("overlay must keep untouched base keys, got %v", server["readTimeout"])
	}
}

func TestFileSource_MissingProfileIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "application.yaml", "app:\n  name: demo\n")

	if _, err := (&FileSource{BasePath: dir, Profile: "nope"}).Load(context.Background()); err != nil {
		t.Errorf("missing overlay should be ignored: %v", err)
	}
}

func TestFileSource_MissingBase(t *testing.T) {
	_, err := (&FileSource{BasePath: t.TempDir()}).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want os.ErrNotExist, got %v", err)
	}
}

func TestFileSource_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "application.yaml", "app: [unclosed")

	if _, err := (&FileSource{BasePath: dir}).Load(context.Background()); err == nil {
		t.Error("want parse error for malformed YAML")
	}
}

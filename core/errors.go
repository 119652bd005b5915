package core

import (
	"fmt"
	"strings"
)

// DuplicateNameError reports a registration whose name is already taken.
// Kind distinguishes the provider and extension namespaces.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s %q is already registered", e.Kind, e.Name)
}

// NotFoundError reports a lookup for a name that was never registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// CyclicDependencyError reports a dependency cycle. Path holds the
// provider names along the cycle, ending on the repeated provider.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Path, " -> ")
}

// MissingDependencyError reports a declared dependency that is not a
// registered provider.
type MissingDependencyError struct {
	Provider   string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("provider %q depends on unregistered provider %q", e.Provider, e.Dependency)
}

// AlreadyStartedError reports a mutation or a second start attempt after
// the system has begun starting. The rejected call has no side effects.
type AlreadyStartedError struct {
	Op string
}

func (e *AlreadyStartedError) Error() string {
	return fmt.Sprintf("cannot %s: application already started", e.Op)
}

// AlreadyInitializedError is the per-provider init re-invocation guard.
type AlreadyInitializedError struct {
	Provider string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("provider %q is already initialized", e.Provider)
}

// AlreadyStartedPhaseError is the per-provider start re-invocation guard.
type AlreadyStartedPhaseError struct {
	Provider string
}

func (e *AlreadyStartedPhaseError) Error() string {
	return fmt.Sprintf("provider %q is already started", e.Provider)
}

// HookFailureError wraps an error raised by an extension hook. Provider
// is empty for the global Prepare hook.
type HookFailureError struct {
	Hook      string
	Extension string
	Provider  string
	Err       error
}

func (e *HookFailureError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("extension %q failed in %s: %v", e.Extension, e.Hook, e.Err)
	}
	return fmt.Sprintf("extension %q failed in %s for provider %q: %v", e.Extension, e.Hook, e.Provider, e.Err)
}

// Unwrap returns the hook's underlying error for errors.Is and errors.As.
func (e *HookFailureError) Unwrap() error { return e.Err }

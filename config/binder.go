package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder turns merged source maps into typed, validated configuration.
// Decoding is handled by mapstructure against `config` tags (with weak
// typing, so "8080" binds to an int and "5s" to a time.Duration), and
// the result is checked against `validate` tags.
type Binder struct {
	validate *validator.Validate
}

// NewBinder returns a Binder with the default decode hooks and
// validators.
func NewBinder() *Binder {
	return &Binder{validate: validator.New()}
}

// BindError reports which stage of binding failed: "decode" for type
// conversion problems, "validate" for rule violations. The target may be
// partially populated when decode succeeds but validation fails.
type BindError struct {
	Stage string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Bind decodes source into target (a struct pointer) and validates it.
func (b *Binder) Bind(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		TagName: "config",
	})
	if err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := decoder.Decode(source); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := b.validate.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}

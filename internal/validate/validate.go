package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/catalog/catalog.go
//   type Wine struct {
//       ID      string `yaml:"id" json:"id" validate:"required,wineid"`
//       Vintage int    `yaml:"vintage" json:"vintage,omitempty" validate:"omitempty,gte=1800,lte=2100"`
//       ...
//   }
//
// Besides the built-in tags (uuid4, oneof, gte, ...) it registers:
//   wineid: lowercase slug, e.g. "chateau-margaux-2015".

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// wineIDPattern matches lowercase alphanumeric words joined by single hyphens.
var wineIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`) //nolint:gochecknoglobals // compiled once.

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// RegisterValidation only fails on empty tags or nil funcs.
		_ = validatorInst.RegisterValidation("wineid", isWineID)
	})
	return validatorInst
}

func isWineID(fl validator.FieldLevel) bool {
	return IsWineID(fl.Field().String())
}

// IsWineID reports whether s is a well-formed catalog identifier.
func IsWineID(s string) bool {
	return wineIDPattern.MatchString(s)
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}

// Package validation provides input validation that reports failures as
// errors.AppError values with per-field details.
//
// Struct tag validation (go-playground/validator) is used for configuration
// structs; the programmatic Validator collects errors while walking task
// lists and request parameters.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Mode string `mapstructure:"mode" validate:"oneof=fail_fast collect_all"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	seen := map[string]struct{}{}
//	v.Required("tasks[0].key", key).Unique("tasks[0].key", key, seen)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation

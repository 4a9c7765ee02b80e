// Package validation provides configuration validation for reactive.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// INVALID_CONFIG stream errors.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Prefetch int `mapstructure:"prefetch" validate:"min=1,max=65536"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("name", cfg.Name).
//	    OneOf("environment", cfg.Environment, envs).
//	    Validate()
package validation

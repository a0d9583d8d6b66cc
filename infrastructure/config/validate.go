package config

import (
	"fmt"
	"net/url"
)

// ValidationError reports one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidatePort checks that port is a usable TCP port.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel checks level against the levels the logger understands.
func ValidateLogLevel(field, level string) error {
	switch level {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: field, Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// ValidateUnitInterval checks 0 <= v <= 1.
func ValidateUnitInterval(field string, v float64) error {
	if v < 0 || v > 1 {
		return &ValidationError{Field: field, Message: "must be within [0, 1]"}
	}
	return nil
}

// ValidateOptionalURL accepts an empty string or an absolute http(s) URL.
func ValidateOptionalURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute http(s) URL"}
	}
	return nil
}

// Validator is implemented by config types that can check themselves.
type Validator interface {
	Validate() error
}

// Validate runs cfg.Validate when cfg implements Validator.
func Validate(cfg any) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}
	return nil
}

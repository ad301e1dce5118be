package config

import (
	"fmt"
	"net/url"
	"strings"

	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the whole configuration and reports every problem found.
// The password is never echoed into errors.
func (c TestafyConfig) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.BaseURI) == "" {
		errs.Add("baseURI", "is required")
	} else if u, err := url.Parse(c.BaseURI); err != nil {
		errs.Add("baseURI", "is not a valid URL", c.BaseURI)
	} else if u.User != nil {
		errs.Add("baseURI", "must not embed credentials; use login and password")
	}

	if testafy.ModeFromLogin(c.Login) == testafy.ModeAccount {
		if c.Login == "" {
			errs.Add("login", fmt.Sprintf("is required (use %q for anonymous runs)", testafy.AnonymousLogin))
		} else if c.Password == "" {
			errs.Add("password", "is required for account login "+c.Login)
		}
	}

	if c.Polling.Interval < 0 {
		errs.Add("polling.interval", "must not be negative", c.Polling.Interval.String())
	}
	if c.Polling.RetryDelay < 0 {
		errs.Add("polling.retryDelay", "must not be negative", c.Polling.RetryDelay.String())
	}
	if c.HTTPTimeout < 0 {
		errs.Add("httpTimeout", "must not be negative", c.HTTPTimeout.String())
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", err.Error(), c.Logging.Level)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs.Add("logging.format", err.Error(), c.Logging.Format)
	}

	if c.Suite.Parallel < 0 {
		errs.Add("suite.parallel", "must not be negative", c.Suite.Parallel)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

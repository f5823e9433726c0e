// Conexus - Resilient Remote Storage Connection Manager
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/conexus

package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// CreateSourceRequest is the payload for registering a new source.
type CreateSourceRequest struct {
	ID       string `json:"id" validate:"omitempty,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Path     string `json:"path" validate:"required,hostname_port"`
	Username string `json:"username" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"omitempty,max=255"`
	Domain   string `json:"domain" validate:"omitempty,max=255"`

	MaxRetryAttempts    int           `json:"max_retry_attempts" validate:"min=0,max=100"`
	RetryDelay          time.Duration `json:"retry_delay" validate:"min=0"`
	ConnectionTimeout   time.Duration `json:"connection_timeout" validate:"min=0"`
	HealthCheckInterval time.Duration `json:"health_check_interval" validate:"min=0"`
}

// UpdateSourceRequest is the payload for partially updating a source.
// Nil fields are left unchanged.
type UpdateSourceRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Path     *string `json:"path,omitempty" validate:"omitempty,hostname_port"`
	Username *string `json:"username,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,max=255"`
	Domain   *string `json:"domain,omitempty" validate:"omitempty,max=255"`

	MaxRetryAttempts    *int           `json:"max_retry_attempts,omitempty" validate:"omitempty,min=0,max=100"`
	RetryDelay          *time.Duration `json:"retry_delay,omitempty" validate:"omitempty,min=0"`
	ConnectionTimeout   *time.Duration `json:"connection_timeout,omitempty" validate:"omitempty,min=0"`
	HealthCheckInterval *time.Duration `json:"health_check_interval,omitempty" validate:"omitempty,min=0"`
}

// NotifyChangeRequest is the payload for reporting a file change on a source.
type NotifyChangeRequest struct {
	Path string `json:"path" validate:"required,min=1,max=4096"`
}

// singleton validator instance; thread-safe and caches struct info.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateRequest validates a request struct using go-playground/validator.
// Returns nil if validation passes, or an APIError with the VALIDATION_ERROR
// code and per-field details.
func validateRequest(v interface{}) *APIError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &APIError{
			Code:    "VALIDATION_ERROR",
			Message: err.Error(),
		}
	}

	messages := make([]string, 0, len(validationErrs))
	fields := make([]map[string]interface{}, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msg := translateFieldError(fe)
		messages = append(messages, msg)
		fields = append(fields, map[string]interface{}{
			"field":   fe.Field(),
			"tag":     fe.Tag(),
			"message": msg,
		})
	}

	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// translateFieldError converts a validator.FieldError to a human-readable
// message.
func translateFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

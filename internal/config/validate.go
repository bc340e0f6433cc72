package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:", len(e))
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate checks the configuration for errors.
// Returns nil if valid, or ValidationErrors if invalid.
func Validate(cfg Config) error {
	var errs ValidationErrors

	// DATABASE_URL is required
	if cfg.DatabaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "DATABASE_URL",
			Message: "required",
		})
	}

	errs = append(errs, validateDuration("POLL_INTERVAL", cfg.PollIntervalStr)...)
	errs = append(errs, validateDuration("TOLERANCE_WINDOW", cfg.ToleranceWindowStr)...)
	errs = append(errs, validateDuration("SNOOZE_DEFAULT", cfg.SnoozeDefaultStr)...)
	errs = append(errs, validateDuration("HISTORY_RETENTION", cfg.HistoryRetentionStr)...)

	// CARETAKER_WEBHOOK_URL must be an http(s) URL when set
	if cfg.CaretakerWebhookURL != "" &&
		!strings.HasPrefix(cfg.CaretakerWebhookURL, "http://") &&
		!strings.HasPrefix(cfg.CaretakerWebhookURL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "CARETAKER_WEBHOOK_URL",
			Message: fmt.Sprintf("must be an http or https URL, got %q", cfg.CaretakerWebhookURL),
		})
	}

	// HISTORY_PRUNE_SCHEDULE must be a standard 5-field cron expression
	if cfg.HistoryPruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.HistoryPruneSchedule); err != nil {
			errs = append(errs, ValidationError{
				Field:   "HISTORY_PRUNE_SCHEDULE",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDuration(field, value string) ValidationErrors {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return ValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("invalid duration: %v", err),
		}}
	}
	if d <= 0 {
		return ValidationErrors{{
			Field:   field,
			Message: "must be positive",
		}}
	}
	return nil
}

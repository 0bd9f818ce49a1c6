package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/cafefarm/pkg/log"
)

// ErrorCategory represents different types of errors in the system
type ErrorCategory string

const (
	CategoryConfig   ErrorCategory = "config"
	CategoryDiscord  ErrorCategory = "discord"
	CategoryNetwork  ErrorCategory = "network"
	CategoryParse    ErrorCategory = "parse"
	CategoryStorage  ErrorCategory = "storage"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of errors
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// ServiceError represents a standardized error in the system
type ServiceError struct {
	Category  ErrorCategory
	Severity  ErrorSeverity
	Message   string
	Operation string
	Component string
	Cause     error
	Context   map[string]any
	Timestamp time.Time
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s in %s.%s: %v", e.Category, e.Severity, e.Message, e.Component, e.Operation, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s in %s.%s", e.Category, e.Severity, e.Message, e.Component, e.Operation)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// New builds a ServiceError with the default severity for its category.
func New(category ErrorCategory, component, operation, message string, cause error) *ServiceError {
	return &ServiceError{
		Category:  category,
		Severity:  severityForCategory(category),
		Message:   message,
		Operation: operation,
		Component: component,
		Cause:     cause,
		Context:   make(map[string]any),
		Timestamp: time.Now(),
	}
}

// With attaches a context value and returns e for chaining.
func (e *ServiceError) With(key string, value any) *ServiceError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Discord wraps a discordgo failure, reading the REST status when present.
func Discord(component, operation string, err error) *ServiceError {
	se := New(CategoryDiscord, component, operation, "Discord API operation failed", err)
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil {
			se.Context["status"] = restErr.Response.StatusCode
			se.Severity = severityForStatus(restErr.Response.StatusCode)
		}
		if restErr.Message != nil {
			se.Context["discord_code"] = restErr.Message.Code
			se.Context["discord_message"] = restErr.Message.Message
		}
	}
	return se
}

// Handle logs err at a level matching its severity and returns it unchanged.
// Plain errors are logged as internal failures.
func Handle(err error) error {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if !errors.As(err, &se) {
		se = New(CategoryInternal, "unknown", "unknown", err.Error(), nil)
	}

	attrs := []any{
		slog.String("category", string(se.Category)),
		slog.String("severity", string(se.Severity)),
		slog.String("component", se.Component),
		slog.String("operation", se.Operation),
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("error", se.Cause.Error()))
	}
	for k, v := range se.Context {
		attrs = append(attrs, slog.Any(k, v))
	}

	switch se.Severity {
	case SeverityLow:
		log.ApplicationLogger().Debug(se.Message, attrs...)
	case SeverityMedium:
		log.ApplicationLogger().Warn(se.Message, attrs...)
	default:
		log.ErrorLoggerRaw().Error(se.Message, attrs...)
	}
	return err
}

// IsCategory reports whether err is a ServiceError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Category == category
}

func severityForStatus(status int) ErrorSeverity {
	switch {
	case status == http.StatusTooManyRequests:
		return SeverityMedium
	case status >= 500:
		return SeverityCritical
	case status >= 400:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func severityForCategory(category ErrorCategory) ErrorSeverity {
	switch category {
	case CategoryConfig:
		return SeverityCritical
	case CategoryParse:
		return SeverityLow
	case CategoryDiscord, CategoryNetwork, CategoryStorage:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

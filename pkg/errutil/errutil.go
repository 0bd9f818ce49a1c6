package errutil

import (
	"fmt"

	"github.com/small-frappuccino/cafefarm/pkg/errors"
)

// HandleDiscordError executes fn and, on failure, logs it as a Discord error
// for the given operation. The returned error wraps the original.
func HandleDiscordError(operation string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}
	err := fn()
	if err == nil {
		return nil
	}
	return errors.Handle(errors.Discord("session", operation, err))
}

// HandleConfigError executes fn and logs any failure as a configuration error.
func HandleConfigError(operation, path string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}
	err := fn()
	if err == nil {
		return nil
	}
	return errors.Handle(errors.New(errors.CategoryConfig, "config", operation, "config "+operation+" failed", err).With("path", path))
}

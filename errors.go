package mixgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mixgo/blobstore"
	"github.com/hupe1980/mixgo/config"
	"github.com/hupe1980/mixgo/mixer"
)

var (
	// ErrNoStore is returned when a store URL is configured but no store
	// was supplied for its scheme.
	ErrNoStore = errors.New("mixgo: no store for url")
	// ErrInputNotFound is returned when an input file or blob is missing.
	ErrInputNotFound = errors.New("mixgo: input not found")
)

// ConfigError reports a configuration rejected before any output exists.
//
// The validation errors can be accessed via errors.Unwrap.
type ConfigError struct {
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// StageError reports a failed transfer between the store and the work
// directory.
type StageError struct {
	Op    string
	cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.cause)
}

func (e *StageError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, config.ErrInvalid) ||
		errors.Is(err, mixer.ErrUnknownStrategy) ||
		errors.Is(err, mixer.ErrInvalidDepth) ||
		errors.Is(err, mixer.ErrInvalidReuseCap) {
		return &ConfigError{cause: err}
	}
	if errors.Is(err, blobstore.ErrNotFound) && !errors.Is(err, ErrInputNotFound) {
		return fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	return err
}

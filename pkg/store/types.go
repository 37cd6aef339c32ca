package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNameRequired = errors.New("store: name is required")

var ErrInvalidName = errors.New("store: invalid name")

// Store loads and saves one payload per name.
type Store interface {
	Load(ctx context.Context, name string) (payload []byte, ok bool, err error)
	Save(ctx context.Context, name string, payload []byte) error
}

// ValidateName rejects empty names and names that could escape a directory.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	if trimmed != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

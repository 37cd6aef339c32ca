package savestate

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch reports an accessor write with an incompatible value.
	ErrTypeMismatch = errors.New("savestate: type mismatch")
	// ErrIntegrity reports a snapshot whose content does not match its hash.
	ErrIntegrity = errors.New("savestate: integrity check failed")
	// ErrStorage reports a durable store read or write failure.
	ErrStorage = errors.New("savestate: storage failure")
	// ErrEncode reports an accessor value its tag cannot encode.
	ErrEncode = errors.New("savestate: encode failure")
	// ErrNoSave indicates the durable store holds no save under the configured name.
	ErrNoSave = errors.New("savestate: no save found")
)

// TypeMismatchError captures the expected and received tags of a rejected
// accessor write.
type TypeMismatchError struct {
	Want   Tag
	Got    Tag
	Detail string
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail != "" {
		return fmt.Sprintf("savestate: type mismatch: want %s, got %s: %s", e.Want, e.Got, e.Detail)
	}
	return fmt.Sprintf("savestate: type mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func mismatch(want, got Tag, format string, args ...any) error {
	detail := ""
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return &TypeMismatchError{Want: want, Got: got, Detail: detail}
}

// IntegrityError describes a snapshot that failed verification on decode.
type IntegrityError struct {
	EntityID EntityID
	Want     int64
	Got      int64
	Err      error
}

func (e *IntegrityError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("savestate: entity %d integrity: %v", e.EntityID, e.Err)
	}
	return fmt.Sprintf("savestate: entity %d integrity: hash %d does not match content %d", e.EntityID, e.Want, e.Got)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrity
}

func (e *IntegrityError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StorageError wraps a durable store failure with the operation and save name.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("savestate: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapStorageError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &StorageError{Op: op, Name: name, Err: err}
}

package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context names the target of a hydration for error messages and hooks.
type Context struct {
	Type string
}

// PreHook lets callers normalise a decoded payload before it is hydrated.
type PreHook func(Context, any) (any, error)

// PostHook lets callers adjust or validate the hydrated value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default JSON round trip when provided.
type CustomDecoder[T any] func(Context, any) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts generic decoded payloads (JSON trees) into typed values.
type Decoder[T any] struct {
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
	custom       CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithCustomDecoder replaces the default JSON round trip.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts payload into T. A payload that already is a T skips the
// JSON round trip but still runs the post hooks.
func (d *Decoder[T]) Decode(ctx Context, payload any) (T, error) {
	var zero T

	current := payload
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.Type, err)
		}
		current = next
	}

	var result T
	switch typed := current.(type) {
	case T:
		result = typed
	default:
		var err error
		if d.custom != nil {
			result, err = d.custom(ctx, current)
			if err != nil {
				return zero, fmt.Errorf("hydrate: custom decoder for %s failed: %w", ctx.Type, err)
			}
			break
		}
		result, err = d.roundTrip(ctx, current)
		if err != nil {
			return zero, err
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx.Type, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) roundTrip(ctx Context, payload any) (T, error) {
	var result T
	buffer, err := json.Marshal(payload)
	if err != nil {
		return result, fmt.Errorf("hydrate: marshal payload for %s: %w", ctx.Type, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	if err := decoder.Decode(&result); err != nil {
		return result, fmt.Errorf("hydrate: decode %s: %w", ctx.Type, err)
	}
	return result, nil
}

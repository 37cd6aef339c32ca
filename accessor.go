package savestate

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/goliatone/go-savestate/internal/hydrate"
)

// Accessor reads and writes a single field of a live object without the
// registry knowing the object's concrete type.
//
// Read and Write run while the owning Registry holds its lock. They must not
// call back into that Registry or a Service built on it; registering a child
// entity from a setter deadlocks. Do such work after Register or Load returns.
type Accessor interface {
	Tag() Tag
	Read() Value
	Write(Value) error
}

// Descriptors is the ordered set of accessors describing one entity. Position
// is the only link between a stored value and the accessor it rehydrates.
type Descriptors []Accessor

// Len returns the number of positions in the set.
func (d Descriptors) Len() int {
	return len(d)
}

// Tags returns the tag at every position.
func (d Descriptors) Tags() []Tag {
	tags := make([]Tag, len(d))
	for i, accessor := range d {
		tags[i] = accessor.Tag()
	}
	return tags
}

// Read returns the current value at every position.
func (d Descriptors) Read() []Value {
	values := make([]Value, len(d))
	for i, accessor := range d {
		values[i] = accessor.Read()
	}
	return values
}

type boundAccessor struct {
	tag Tag
	get func() Value
	set func(Value) error
}

// Bind pairs a getter and setter under tag. Write rejects values whose tag or
// payload type disagree with tag before set is invoked.
func Bind(tag Tag, get func() Value, set func(Value) error) Accessor {
	return &boundAccessor{tag: tag, get: get, set: set}
}

func (a *boundAccessor) Tag() Tag {
	return a.tag
}

func (a *boundAccessor) Read() Value {
	if a.get == nil {
		return Value{Tag: a.tag}
	}
	value := a.get()
	value.Tag = a.tag
	return value
}

func (a *boundAccessor) Write(value Value) error {
	if value.Tag != a.tag {
		return mismatch(a.tag, value.Tag, "")
	}
	if !value.payloadFits() {
		return mismatch(a.tag, value.Tag, "payload %T", value.V)
	}
	if a.set == nil {
		return nil
	}
	return a.set(value)
}

func (a *boundAccessor) String() string {
	return fmt.Sprintf("(%s: %v)", a.tag, a.Read().V)
}

// Int binds a signed integer field of any width. Writes that overflow the
// field's width are rejected.
func Int[T constraints.Signed](get func() T, set func(T)) Accessor {
	return Bind(TagSigned,
		func() Value { return IntValue(int64(get())) },
		func(v Value) error {
			raw := v.V.(int64)
			narrowed := T(raw)
			if int64(narrowed) != raw {
				return mismatch(TagSigned, TagSigned, "%d overflows %T", raw, narrowed)
			}
			set(narrowed)
			return nil
		})
}

// Uint binds an unsigned integer field of any width.
func Uint[T constraints.Unsigned](get func() T, set func(T)) Accessor {
	return Bind(TagUnsigned,
		func() Value { return UintValue(uint64(get())) },
		func(v Value) error {
			raw := v.V.(uint64)
			narrowed := T(raw)
			if uint64(narrowed) != raw {
				return mismatch(TagUnsigned, TagUnsigned, "%d overflows %T", raw, narrowed)
			}
			set(narrowed)
			return nil
		})
}

// Float binds a floating point field. Narrowing to float32 keeps the nearest
// value but rejects magnitudes that would become infinite.
func Float[T constraints.Float](get func() T, set func(T)) Accessor {
	return Bind(TagFloat,
		func() Value { return FloatValue(float64(get())) },
		func(v Value) error {
			raw := v.V.(float64)
			narrowed := T(raw)
			if !math.IsInf(raw, 0) && math.IsInf(float64(narrowed), 0) {
				return mismatch(TagFloat, TagFloat, "%g overflows %T", raw, narrowed)
			}
			set(narrowed)
			return nil
		})
}

func Bool[T ~bool](get func() T, set func(T)) Accessor {
	return Bind(TagBool,
		func() Value { return BoolValue(bool(get())) },
		func(v Value) error {
			set(T(v.V.(bool)))
			return nil
		})
}

func Text[T ~string](get func() T, set func(T)) Accessor {
	return Bind(TagText,
		func() Value { return TextValue(string(get())) },
		func(v Value) error {
			set(T(v.V.(string)))
			return nil
		})
}

// Time binds a timestamp stored as RFC 3339 text. Text that does not parse is
// rejected as a mismatch.
func Time(get func() time.Time, set func(time.Time)) Accessor {
	return Bind(TagText,
		func() Value { return TimeValue(get()) },
		func(v Value) error {
			parsed, err := time.Parse(time.RFC3339Nano, v.V.(string))
			if err != nil {
				return mismatch(TagText, TagText, "not a timestamp: %v", err)
			}
			set(parsed)
			return nil
		})
}

// Null reserves a position that always stores null.
func Null() Accessor {
	return Bind(TagNull,
		func() Value { return NullValue() },
		func(Value) error { return nil })
}

// ObjectOption configures how decoded object payloads hydrate into T.
type ObjectOption[T any] func(*objectConfig[T])

type objectConfig[T any] struct {
	decoder []hydrate.DecoderOption[T]
}

// ObjectStrict rejects decoded payloads carrying fields T does not declare.
func ObjectStrict[T any]() ObjectOption[T] {
	return func(cfg *objectConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithDisallowUnknownFields[T]())
	}
}

// ObjectValidate runs fn on every hydrated value; an error rejects the write.
func ObjectValidate[T any](fn func(*T) error) ObjectOption[T] {
	return func(cfg *objectConfig[T]) {
		if fn == nil {
			return
		}
		cfg.decoder = append(cfg.decoder, hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			return fn(value)
		}))
	}
}

// Object binds a structured field that round trips through the general JSON
// serializer. Writes accept either a T or a decoded JSON tree.
func Object[T any](get func() T, set func(T), opts ...ObjectOption[T]) Accessor {
	cfg := objectConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	decoder := hydrate.NewDecoder(cfg.decoder...)
	var zero T
	typeName := fmt.Sprintf("%T", zero)
	return Bind(TagObject,
		func() Value { return ObjectValue(get()) },
		func(v Value) error {
			out, err := decoder.Decode(hydrate.Context{Type: typeName}, v.V)
			if err != nil {
				return mismatch(TagObject, TagObject, "%v", err)
			}
			set(out)
			return nil
		})
}

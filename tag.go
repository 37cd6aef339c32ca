package savestate

import (
	"fmt"
	"time"
)

// Tag identifies the storage kind of a field. The numeric values are part of
// the save format and must not be renumbered.
type Tag int

const (
	// TagInvalid guards against zero-valued tags leaking into a save.
	TagInvalid Tag = iota
	TagSigned
	TagUnsigned
	TagFloat
	TagBool
	TagText
	TagNull
	TagObject
)

func (t Tag) String() string {
	switch t {
	case TagSigned:
		return "signed"
	case TagUnsigned:
		return "unsigned"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	case TagText:
		return "text"
	case TagNull:
		return "null"
	case TagObject:
		return "object"
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// Valid reports whether t is one of the known storage kinds.
func (t Tag) Valid() bool {
	return t >= TagSigned && t <= TagObject
}

// ParseTag converts the String form of a tag back into a Tag. Unknown names
// return TagInvalid.
func ParseTag(name string) Tag {
	switch name {
	case "signed":
		return TagSigned
	case "unsigned":
		return TagUnsigned
	case "float":
		return TagFloat
	case "bool":
		return TagBool
	case "text":
		return TagText
	case "null":
		return TagNull
	case "object":
		return TagObject
	default:
		return TagInvalid
	}
}

// Value is a tagged field value. Payloads use the widest Go type of their
// kind: int64, uint64, float64, bool, string, nil. Object payloads are either
// the live value or, after a load, a decoded JSON tree.
type Value struct {
	Tag Tag
	V   any
}

func (v Value) String() string {
	return fmt.Sprintf("(%s: %v)", v.Tag, v.V)
}

func IntValue(v int64) Value { return Value{Tag: TagSigned, V: v} }

func UintValue(v uint64) Value { return Value{Tag: TagUnsigned, V: v} }

func FloatValue(v float64) Value { return Value{Tag: TagFloat, V: v} }

func BoolValue(v bool) Value { return Value{Tag: TagBool, V: v} }

func TextValue(v string) Value { return Value{Tag: TagText, V: v} }

// TimeValue stores a timestamp as RFC 3339 text.
func TimeValue(v time.Time) Value {
	return Value{Tag: TagText, V: v.UTC().Format(time.RFC3339Nano)}
}

func NullValue() Value { return Value{Tag: TagNull} }

func ObjectValue(v any) Value { return Value{Tag: TagObject, V: v} }

// payloadFits reports whether the payload's Go type is the canonical one for
// the tag.
func (v Value) payloadFits() bool {
	switch v.Tag {
	case TagSigned:
		_, ok := v.V.(int64)
		return ok
	case TagUnsigned:
		_, ok := v.V.(uint64)
		return ok
	case TagFloat:
		_, ok := v.V.(float64)
		return ok
	case TagBool:
		_, ok := v.V.(bool)
		return ok
	case TagText:
		_, ok := v.V.(string)
		return ok
	case TagNull:
		return v.V == nil
	case TagObject:
		return true
	default:
		return false
	}
}

package savestate

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// EntityID names one persistable object for the lifetime of a registry. Two
// entities registering the same id overwrite each other.
type EntityID int64

// EncodedValue is one positional value in its durable form.
type EncodedValue struct {
	Tag   Tag             `json:"type"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON accepts exactly the "type" and "value" members. Keys are
// matched case sensitively so damage to a key name is not absorbed by the
// lenient struct decoding.
func (v *EncodedValue) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	rawTag, hasTag := members["type"]
	rawValue, hasValue := members["value"]
	if !hasTag || !hasValue || len(members) != 2 {
		return fmt.Errorf("encoded value: want members type and value, got %d member(s)", len(members))
	}
	var tag Tag
	if err := json.Unmarshal(rawTag, &tag); err != nil {
		return fmt.Errorf("encoded value type: %w", err)
	}
	v.Tag = tag
	v.Value = append(json.RawMessage(nil), rawValue...)
	return nil
}

// Snapshot is the hash-protected durable form of one entity's values. Hash
// holds the 64-bit content hash reinterpreted as a signed integer so it stays
// within the JSON Schema integer range.
type Snapshot struct {
	ID     EntityID       `json:"id"`
	Hash   int64          `json:"hash"`
	Values []EncodedValue `json:"values"`
}

// Codec converts ordered values to and from snapshots. The zero value is
// ready to use.
type Codec struct{}

// Encode reads every accessor in order and encodes the result.
func (c Codec) Encode(id EntityID, descriptors Descriptors) (Snapshot, error) {
	return c.EncodeValues(id, descriptors.Read())
}

// EncodeValues encodes already-read values.
func (Codec) EncodeValues(id EntityID, values []Value) (Snapshot, error) {
	encoded := make([]EncodedValue, len(values))
	for i, value := range values {
		raw, err := encodeValue(value)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: entity %d position %d: %v", ErrEncode, id, i, err)
		}
		encoded[i] = EncodedValue{Tag: value.Tag, Value: raw}
	}
	hash, err := ContentHash(encoded)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: entity %d: %v", ErrEncode, id, err)
	}
	return Snapshot{ID: id, Hash: int64(hash), Values: encoded}, nil
}

// Decode verifies the snapshot hash and converts every value back into its
// canonical payload. Any failure is reported as an IntegrityError and no
// values are returned.
func (Codec) Decode(snapshot Snapshot) ([]Value, error) {
	sum, err := ContentHash(snapshot.Values)
	if err != nil {
		return nil, &IntegrityError{EntityID: snapshot.ID, Want: snapshot.Hash, Err: err}
	}
	hash := int64(sum)
	if hash != snapshot.Hash {
		return nil, &IntegrityError{EntityID: snapshot.ID, Want: snapshot.Hash, Got: hash}
	}

	values := make([]Value, len(snapshot.Values))
	for i, encoded := range snapshot.Values {
		value, err := decodeValue(encoded)
		if err != nil {
			return nil, &IntegrityError{
				EntityID: snapshot.ID,
				Want:     snapshot.Hash,
				Got:      hash,
				Err:      fmt.Errorf("position %d: %w", i, err),
			}
		}
		values[i] = value
	}
	return values, nil
}

// ContentHash computes the xxhash64 of the tags and compacted bytes of every
// value. Each value is length framed so shifting bytes between neighbours
// changes the hash.
func ContentHash(values []EncodedValue) (uint64, error) {
	digest := xxhash.New()
	var frame [16]byte
	var compacted bytes.Buffer
	for i, value := range values {
		compacted.Reset()
		raw := value.Value
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		if err := json.Compact(&compacted, raw); err != nil {
			return 0, fmt.Errorf("position %d: %w", i, err)
		}
		binary.BigEndian.PutUint64(frame[:8], uint64(value.Tag))
		binary.BigEndian.PutUint64(frame[8:], uint64(compacted.Len()))
		_, _ = digest.Write(frame[:])
		_, _ = digest.Write(compacted.Bytes())
	}
	return digest.Sum64(), nil
}

func encodeValue(value Value) (json.RawMessage, error) {
	if !value.Tag.Valid() {
		return nil, fmt.Errorf("unknown tag %s", value.Tag)
	}
	if !value.payloadFits() {
		return nil, fmt.Errorf("payload %T does not fit tag %s", value.V, value.Tag)
	}
	switch value.Tag {
	case TagSigned:
		return json.RawMessage(strconv.FormatInt(value.V.(int64), 10)), nil
	case TagUnsigned:
		return json.RawMessage(strconv.FormatUint(value.V.(uint64), 10)), nil
	case TagFloat:
		f := value.V.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("float %v has no decimal form", f)
		}
		text := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return json.RawMessage(text), nil
	case TagBool:
		if value.V.(bool) {
			return json.RawMessage("true"), nil
		}
		return json.RawMessage("false"), nil
	case TagText:
		return json.Marshal(value.V.(string))
	case TagNull:
		return json.RawMessage("null"), nil
	default:
		raw, err := json.Marshal(value.V)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
}

func decodeValue(encoded EncodedValue) (Value, error) {
	raw := strings.TrimSpace(string(encoded.Value))
	switch encoded.Tag {
	case TagSigned:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(v), nil
	case TagUnsigned:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return UintValue(v), nil
	case TagFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(v), nil
	case TagBool:
		switch raw {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		default:
			return Value{}, fmt.Errorf("invalid bool literal %q", raw)
		}
	case TagText:
		if !strings.HasPrefix(raw, `"`) {
			return Value{}, fmt.Errorf("text value is not a quoted string")
		}
		var text string
		if err := json.Unmarshal([]byte(raw), &text); err != nil {
			return Value{}, err
		}
		return TextValue(text), nil
	case TagNull:
		if raw != "" && raw != "null" {
			return Value{}, fmt.Errorf("null value carries %q", raw)
		}
		return NullValue(), nil
	case TagObject:
		decoder := json.NewDecoder(strings.NewReader(raw))
		decoder.UseNumber()
		var tree any
		if err := decoder.Decode(&tree); err != nil {
			return Value{}, err
		}
		return ObjectValue(tree), nil
	default:
		return Value{}, fmt.Errorf("unknown tag %s", encoded.Tag)
	}
}

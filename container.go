package savestate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ContainerVersion is the save format written by this package.
const ContainerVersion = 1

// Container is the durable document holding every entity snapshot of one save.
type Container struct {
	Version  int        `json:"version"`
	SaveID   string     `json:"save_id,omitempty"`
	SavedAt  time.Time  `json:"saved_at"`
	Entities []Snapshot `json:"entities"`
}

// EntityDecodeError reports a container entity that could not be parsed into
// a Snapshot. Only that entity is lost.
type EntityDecodeError struct {
	Index int
	ID    EntityID
	HasID bool
	Err   error
}

func (e *EntityDecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.HasID {
		return fmt.Sprintf("savestate: entity %d (index %d) malformed: %v", e.ID, e.Index, e.Err)
	}
	return fmt.Sprintf("savestate: entity at index %d malformed: %v", e.Index, e.Err)
}

func (e *EntityDecodeError) Is(target error) bool {
	return target == ErrIntegrity
}

func (e *EntityDecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

var (
	entitiesOpen  = []byte(`,"entities":[`)
	entitiesClose = []byte("]}")
)

type containerHeader struct {
	Version int       `json:"version"`
	SaveID  string    `json:"save_id,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// MarshalContainer encodes c as JSON with every entity on its own line. JSON
// strings never hold a raw newline, so a damaged entity cannot spill into
// its neighbours and UnmarshalContainer can still recover the rest.
func MarshalContainer(c Container) ([]byte, error) {
	header, err := json.Marshal(containerHeader{Version: c.Version, SaveID: c.SaveID, SavedAt: c.SavedAt})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(header[:len(header)-1])
	buf.Write(entitiesOpen)
	for i, snapshot := range c.Entities {
		line, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", snapshot.ID, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		buf.Write(line)
	}
	if len(c.Entities) > 0 {
		buf.WriteByte('\n')
	}
	buf.Write(entitiesClose)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type rawContainer struct {
	Version  int               `json:"version"`
	SaveID   string            `json:"save_id"`
	SavedAt  time.Time         `json:"saved_at"`
	Entities []json.RawMessage `json:"entities"`
}

// UnmarshalContainer decodes a container. Entities that do not match the
// snapshot shape are returned as EntityDecodeErrors and skipped. When the
// document as a whole is not valid JSON, entities are recovered line by line
// from the layout MarshalContainer writes; a broken header or a document in
// any other layout fails as a whole.
func UnmarshalContainer(payload []byte) (Container, []*EntityDecodeError, error) {
	var raw rawContainer
	if err := json.Unmarshal(payload, &raw); err != nil {
		recovered, recoverErr := splitContainer(payload)
		if recoverErr != nil {
			return Container{}, nil, fmt.Errorf("decode container: %w", err)
		}
		raw = recovered
	}
	if raw.Version > ContainerVersion {
		return Container{}, nil, fmt.Errorf("decode container: unsupported version %d", raw.Version)
	}

	out := Container{
		Version:  raw.Version,
		SaveID:   raw.SaveID,
		SavedAt:  raw.SavedAt,
		Entities: make([]Snapshot, 0, len(raw.Entities)),
	}
	var broken []*EntityDecodeError
	for i, entity := range raw.Entities {
		var snapshot Snapshot
		if err := json.Unmarshal(entity, &snapshot); err != nil {
			decodeErr := &EntityDecodeError{Index: i, Err: err}
			decodeErr.ID, decodeErr.HasID = probeID(entity)
			broken = append(broken, decodeErr)
			continue
		}
		out.Entities = append(out.Entities, snapshot)
	}
	return out, broken, nil
}

var errLayout = errors.New("not a line per entity container")

// splitContainer reads the header from the first line and takes every line
// up to the closing "]}" as one raw entity.
func splitContainer(payload []byte) (rawContainer, error) {
	lines := bytes.Split(bytes.TrimRight(payload, "\r\n"), []byte("\n"))
	if len(lines) < 2 {
		return rawContainer{}, errLayout
	}
	head := bytes.TrimSpace(lines[0])
	tail := bytes.TrimSpace(lines[len(lines)-1])
	if !bytes.HasSuffix(head, entitiesOpen) || !bytes.Equal(tail, entitiesClose) {
		return rawContainer{}, errLayout
	}

	doc := make([]byte, 0, len(head)+len(entitiesClose))
	doc = append(doc, head...)
	doc = append(doc, entitiesClose...)
	var raw rawContainer
	if err := json.Unmarshal(doc, &raw); err != nil {
		return rawContainer{}, err
	}

	for _, line := range lines[1 : len(lines)-1] {
		line = bytes.TrimSpace(line)
		line = bytes.TrimSuffix(line, []byte(","))
		if len(line) == 0 {
			continue
		}
		raw.Entities = append(raw.Entities, json.RawMessage(line))
	}
	return raw, nil
}

// probeID streams tokens from a broken entity until it finds a top level
// "id" member. The id is written first, so damage further along the entity
// does not hide it.
func probeID(entity []byte) (EntityID, bool) {
	dec := json.NewDecoder(bytes.NewReader(entity))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return 0, false
	}
	depth := 1
	expectKey := true
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return 0, false
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			if depth == 1 {
				expectKey = true
			}
			continue
		case string:
			if depth == 1 && expectKey {
				if v != "id" {
					expectKey = false
					continue
				}
				next, err := dec.Token()
				if err != nil {
					return 0, false
				}
				num, ok := next.(json.Number)
				if !ok {
					return 0, false
				}
				id, err := num.Int64()
				if err != nil {
					return 0, false
				}
				return EntityID(id), true
			}
		}
		if depth == 1 {
			expectKey = true
		}
	}
	return 0, false
}

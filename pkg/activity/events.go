package activity

import (
	"strconv"
	"strings"
	"time"
)

const (
	VerbSaved          = "savestate.saved"
	VerbLoaded         = "savestate.loaded"
	VerbEntityRejected = "savestate.entity.rejected"

	ObjectSave   = "savestate.save"
	ObjectEntity = "savestate.entity"
)

// SaveEventInput describes a completed save.
type SaveEventInput struct {
	SaveID     string
	FileName   string
	Entities   int
	Bytes      int
	Duration   time.Duration
	OccurredAt time.Time
}

// LoadEventInput describes a completed load.
type LoadEventInput struct {
	SaveID     string
	FileName   string
	Applied    int
	Pending    int
	Rejected   int
	Dropped    int
	Duration   time.Duration
	OccurredAt time.Time
}

// RejectedEventInput describes one entity refused during a load.
type RejectedEventInput struct {
	SaveID     string
	FileName   string
	EntityID   int64
	Reason     string
	OccurredAt time.Time
}

// BuildSavedEvent constructs the event emitted after a save is committed.
func BuildSavedEvent(input SaveEventInput) Event {
	metadata := map[string]any{
		"entities": input.Entities,
		"bytes":    input.Bytes,
	}
	addCommon(metadata, input.FileName, input.Duration)
	return Event{
		Verb:       VerbSaved,
		ObjectType: ObjectSave,
		ObjectID:   objectID(input.SaveID, input.FileName),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildLoadedEvent constructs the event emitted after a load completes.
func BuildLoadedEvent(input LoadEventInput) Event {
	metadata := map[string]any{
		"applied":  input.Applied,
		"pending":  input.Pending,
		"rejected": input.Rejected,
		"dropped":  input.Dropped,
	}
	addCommon(metadata, input.FileName, input.Duration)
	return Event{
		Verb:       VerbLoaded,
		ObjectType: ObjectSave,
		ObjectID:   objectID(input.SaveID, input.FileName),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// BuildEntityRejectedEvent constructs the event emitted for each entity a
// load refuses.
func BuildEntityRejectedEvent(input RejectedEventInput) Event {
	metadata := map[string]any{}
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		metadata["reason"] = reason
	}
	if saveID := strings.TrimSpace(input.SaveID); saveID != "" {
		metadata["save_id"] = saveID
	}
	addCommon(metadata, input.FileName, 0)
	return Event{
		Verb:       VerbEntityRejected,
		ObjectType: ObjectEntity,
		ObjectID:   strconv.FormatInt(input.EntityID, 10),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func addCommon(metadata map[string]any, fileName string, duration time.Duration) {
	if name := strings.TrimSpace(fileName); name != "" {
		metadata["file"] = name
	}
	if duration > 0 {
		metadata["duration_ms"] = duration.Milliseconds()
	}
}

func objectID(saveID, fileName string) string {
	if id := strings.TrimSpace(saveID); id != "" {
		return id
	}
	if name := strings.TrimSpace(fileName); name != "" {
		return name
	}
	return ObjectSave
}

package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-savestate/pkg/activity"
	"github.com/goliatone/go-savestate/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	saveID := uuid.NewString()

	event := activity.BuildSavedEvent(activity.SaveEventInput{
		SaveID:     saveID,
		FileName:   "SaveGame",
		Entities:   2,
		OccurredAt: now,
	})
	event.ActorID = actorID.String()
	event.TenantID = tenantID.String()
	event.Channel = activity.DefaultChannel

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identities: %+v", record)
	}
	if record.Verb != activity.VerbSaved || record.ObjectType != activity.ObjectSave || record.ObjectID != saveID {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != activity.DefaultChannel || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel or time: %+v", record)
	}
	if record.Data["file"] != "SaveGame" || record.Data["entities"] != 2 {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
}

func TestHookKeepsNonUUIDActor(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	event := activity.BuildEntityRejectedEvent(activity.RejectedEventInput{EntityID: 7, Reason: "integrity"})
	event.ActorID = "player-one"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected nil actor uuid, got %s", record.ActorID)
	}
	if record.Data["actor"] != "player-one" || record.ObjectID != "7" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestHookSkipsIncompleteEventsAndPropagatesErrors(t *testing.T) {
	boom := errors.New("sink down")
	sink := &recordingSink{err: boom}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbSaved}); err != nil {
		t.Fatalf("expected incomplete event to be skipped, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}

	event := activity.BuildLoadedEvent(activity.LoadEventInput{FileName: "SaveGame"})
	if err := hook.Notify(context.Background(), event); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}

	if err := (usersink.Hook{}).Notify(context.Background(), event); err != nil {
		t.Fatalf("nil sink should be a no-op, got %v", err)
	}
}

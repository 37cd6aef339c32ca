package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " savestate.saved ",
		ActorID:    " actor ",
		TenantID:   " tenant ",
		ObjectType: " savestate.save ",
		ObjectID:   " 42 ",
		Channel:    " savestate ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "savestate.saved" || got.ObjectType != "savestate.save" || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.TenantID != "tenant" || got.Channel != "savestate" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: VerbSaved}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: VerbLoaded, ObjectType: ObjectSave, ObjectID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if got := capture.Verbs(); len(got) != 1 || got[0] != VerbLoaded {
		t.Fatalf("expected one captured event, got %v", got)
	}
}

func TestEmitterDefaults(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	_ = disabled.Emit(context.Background(), Event{Verb: VerbSaved, ObjectType: ObjectSave, ObjectID: "1"})
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatalf("nil emitter should be disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true, ActorID: "player-1"})
	if err := enabled.Emit(context.Background(), Event{Verb: VerbSaved, ObjectType: ObjectSave, ObjectID: "1"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	if capture.Events[0].Channel != DefaultChannel || capture.Events[0].ActorID != "player-1" {
		t.Fatalf("expected defaults applied, got %+v", capture.Events[0])
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default", ActorID: "a"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbSaved,
		ObjectType: ObjectSave,
		ObjectID:   "1",
		Channel:    "custom",
		ActorID:    "b",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events[0]
	if got.Channel != "custom" || got.ActorID != "b" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit fields preserved, got %+v", got)
	}
}

package savestate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-savestate/guard"
	"github.com/goliatone/go-savestate/pkg/activity"
	"github.com/goliatone/go-savestate/pkg/store"
)

// Service orchestrates Register, Save and Load against a Registry and a
// durable store. Save and Load are serialised; Register only takes the
// registry lock.
type Service struct {
	registry *Registry
	store    store.Store
	codec    Codec
	cfg      serviceConfig
	emitter  *activity.Emitter

	ioMu sync.Mutex
}

// New constructs a Service writing to backend. A nil backend keeps saves in
// memory.
func New(backend store.Store, opts ...Option) *Service {
	cfg := applyOptions(opts)
	if backend == nil {
		backend = store.NewMemoryStore()
	}
	registry := cfg.registry
	if registry == nil {
		registry = NewRegistry(RegistryLogger(cfg.logger))
	}
	return &Service{
		registry: registry,
		store:    backend,
		cfg:      cfg,
		emitter:  cfg.activity.emitter(),
	}
}

// Registry exposes the registry backing the service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// FileName returns the store name saves are written under.
func (s *Service) FileName() string {
	return s.cfg.fileName
}

// Register records descriptors for id. See Registry.Register.
func (s *Service) Register(id EntityID, descriptors Descriptors) RegisterResult {
	return s.registry.Register(id, descriptors)
}

// Describe lists the persistable shape of every registered entity.
func (s *Service) Describe() []EntityDescriptor {
	return s.registry.Describe()
}

// Save reads every registered entity and replaces the stored container.
// Encode failures return ErrEncode and storage failures a *StorageError; in
// both cases the previously stored container is left untouched.
func (s *Service) Save(ctx context.Context) (SaveReport, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	name := s.cfg.fileName
	if err := ctx.Err(); err != nil {
		return SaveReport{}, wrapStorageError("save", name, err)
	}
	start := s.cfg.now()

	captures := s.registry.Capture()
	snapshots := make([]Snapshot, 0, len(captures))
	for _, capture := range captures {
		snapshot, err := s.codec.EncodeValues(capture.ID, capture.Values)
		if err != nil {
			s.cfg.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticSave, EntityID: capture.ID, Position: -1, Err: err})
			return SaveReport{}, err
		}
		snapshots = append(snapshots, snapshot)
	}

	container := Container{
		Version:  ContainerVersion,
		SaveID:   s.cfg.newID(),
		SavedAt:  start.UTC(),
		Entities: snapshots,
	}
	payload, err := MarshalContainer(container)
	if err != nil {
		return SaveReport{}, fmt.Errorf("%w: container: %v", ErrEncode, err)
	}
	sealed, err := s.cfg.obfuscator.Seal(payload)
	if err != nil {
		return SaveReport{}, wrapStorageError("seal", name, err)
	}
	if err := ctx.Err(); err != nil {
		return SaveReport{}, wrapStorageError("save", name, err)
	}
	if err := s.store.Save(ctx, name, sealed); err != nil {
		err = wrapStorageError("save", name, err)
		s.cfg.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticSave, Position: -1, Entities: len(snapshots), Err: err})
		return SaveReport{}, err
	}

	duration := s.cfg.now().Sub(start)
	report := SaveReport{
		SaveID:   container.SaveID,
		SavedAt:  container.SavedAt,
		Entities: len(snapshots),
		Bytes:    len(sealed),
	}
	s.cfg.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticSave, Position: -1, Entities: report.Entities, Duration: duration})
	s.emit(ctx, activity.BuildSavedEvent(activity.SaveEventInput{
		SaveID:     report.SaveID,
		FileName:   name,
		Entities:   report.Entities,
		Bytes:      report.Bytes,
		Duration:   duration,
		OccurredAt: report.SavedAt,
	}))
	return report, nil
}

// Load reads the stored container and pushes every entity that passes the
// integrity and guard checks into the registry. Registered entities receive
// their values immediately; the rest are parked as pending. Only storage
// failures are returned; a missing save reports ErrNoSave.
func (s *Service) Load(ctx context.Context) (LoadReport, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	name := s.cfg.fileName
	if err := ctx.Err(); err != nil {
		return LoadReport{}, wrapStorageError("load", name, err)
	}
	start := s.cfg.now()

	payload, ok, err := s.store.Load(ctx, name)
	if err != nil {
		return LoadReport{}, wrapStorageError("load", name, err)
	}
	if !ok {
		return LoadReport{}, &StorageError{Op: "load", Name: name, Err: ErrNoSave}
	}
	plain, err := s.cfg.obfuscator.Open(payload)
	if err != nil {
		return LoadReport{}, wrapStorageError("open", name, err)
	}
	container, broken, err := UnmarshalContainer(plain)
	if err != nil {
		return LoadReport{}, wrapStorageError("decode", name, err)
	}

	report := LoadReport{
		SaveID:   container.SaveID,
		SavedAt:  container.SavedAt,
		Entities: make([]EntityOutcome, 0, len(container.Entities)+len(broken)),
	}
	for _, decodeErr := range broken {
		s.reject(ctx, &report, decodeErr.ID, DiagnosticIntegrity, decodeErr)
	}
	for _, snapshot := range container.Entities {
		values, err := s.codec.Decode(snapshot)
		if err != nil {
			s.reject(ctx, &report, snapshot.ID, DiagnosticIntegrity, err)
			continue
		}
		if s.cfg.guard != nil {
			if err := s.cfg.guard.Check(guardContext(snapshot.ID, values, start)); err != nil {
				s.reject(ctx, &report, snapshot.ID, DiagnosticGuard, err)
				continue
			}
		}

		result := s.registry.Apply(snapshot.ID, values)
		outcome := EntityOutcome{ID: snapshot.ID, Applied: result.Applied, Healed: result.Healed}
		switch {
		case result.Pending:
			outcome.Status = StatusPending
		case result.Dropped:
			outcome.Status = StatusDropped
			outcome.Reason = "field count changed"
		default:
			outcome.Status = StatusApplied
		}
		report.Entities = append(report.Entities, outcome)
	}

	duration := s.cfg.now().Sub(start)
	s.cfg.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticLoad, Position: -1, Entities: len(report.Entities), Duration: duration})
	s.emit(ctx, activity.BuildLoadedEvent(activity.LoadEventInput{
		SaveID:     report.SaveID,
		FileName:   name,
		Applied:    report.Count(StatusApplied),
		Pending:    report.Count(StatusPending),
		Rejected:   report.Count(StatusRejected),
		Dropped:    report.Count(StatusDropped),
		Duration:   duration,
		OccurredAt: s.cfg.now(),
	}))
	return report, nil
}

func (s *Service) reject(ctx context.Context, report *LoadReport, id EntityID, kind DiagnosticKind, err error) {
	s.cfg.logger.LogDiagnostic(Diagnostic{Kind: kind, EntityID: id, Position: -1, Err: err})
	report.Entities = append(report.Entities, EntityOutcome{ID: id, Status: StatusRejected, Reason: err.Error()})
	s.emit(ctx, activity.BuildEntityRejectedEvent(activity.RejectedEventInput{
		SaveID:     report.SaveID,
		FileName:   s.cfg.fileName,
		EntityID:   int64(id),
		Reason:     err.Error(),
		OccurredAt: s.cfg.now(),
	}))
}

func (s *Service) emit(ctx context.Context, event activity.Event) {
	if !s.emitter.Enabled() {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.cfg.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticActivity, Position: -1, Err: err})
	}
}

// guardContext exposes decoded values to guard rules as plain Go values.
// Numbers inside object trees become int64 or float64.
func guardContext(id EntityID, values []Value, now time.Time) guard.Context {
	ctx := guard.Context{
		ID:     int64(id),
		Values: make([]any, len(values)),
		Tags:   make([]string, len(values)),
		Now:    now,
	}
	for i, value := range values {
		ctx.Tags[i] = value.Tag.String()
		if value.Tag == TagObject {
			ctx.Values[i] = plainTree(value.V)
			continue
		}
		ctx.Values[i] = value.V
	}
	return ctx
}

func plainTree(node any) any {
	switch typed := node.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = plainTree(value)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = plainTree(value)
		}
		return out
	default:
		return node
	}
}

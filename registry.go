package savestate

import (
	"sort"
	"sync"

	"github.com/goliatone/go-savestate/internal/clone"
)

// Outcome describes what a registration did with previously known values.
type Outcome string

const (
	// OutcomeInserted means the id was new and no values were applied.
	OutcomeInserted Outcome = "inserted"
	// OutcomeMigrated means the field count changed and cached values were discarded.
	OutcomeMigrated Outcome = "migrated"
	// OutcomeReclaimed means cached values were written through the new accessors.
	OutcomeReclaimed Outcome = "reclaimed"
	// OutcomePendingClaimed means values loaded before registration were applied.
	OutcomePendingClaimed Outcome = "pending_claimed"
)

// RegisterResult reports the effect of one registration. Applied counts
// positions written from a cached value; Healed counts positions whose cached
// value was rejected and replaced by the accessor's current value.
type RegisterResult struct {
	ID      EntityID
	Outcome Outcome
	Applied int
	Healed  int
}

// ApplyResult reports the effect of pushing loaded values into an entity.
type ApplyResult struct {
	ID      EntityID
	Pending bool
	Dropped bool
	Applied int
	Healed  int
}

// Capture holds the values read from one entity during a save.
type Capture struct {
	ID     EntityID
	Values []Value
}

type cachedValue struct {
	value Value
	ok    bool
}

type entry struct {
	descriptors Descriptors
	values      []cachedValue
}

func newEntry(descriptors Descriptors) *entry {
	return &entry{
		descriptors: descriptors,
		values:      make([]cachedValue, len(descriptors)),
	}
}

// Registry maps entity ids to their descriptors, last known values and any
// values loaded before the entity registered. A single mutex guards the whole
// table.
type Registry struct {
	mu      sync.Mutex
	entries map[EntityID]*entry
	pending map[EntityID][]Value
	logger  Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// RegistryLogger routes registry diagnostics to logger.
func RegistryLogger(logger Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[EntityID]*entry),
		pending: make(map[EntityID][]Value),
		logger:  noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Registry) init() {
	if r.entries == nil {
		r.entries = make(map[EntityID]*entry)
	}
	if r.pending == nil {
		r.pending = make(map[EntityID][]Value)
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
}

// Register records descriptors for id and reconciles them with whatever the
// registry already knows about id:
//
//   - an unseen id is inserted without values;
//   - a different field count discards the old entry and its cached values;
//   - the same field count writes cached values through the new accessors,
//     falling back to each accessor's current value when a write is rejected.
//
// Pending values loaded for id take the place of cached values and are
// consumed by this call. Accessor callbacks run under the registry lock, as
// they do in Apply and Capture, so they must not re-enter the registry.
func (r *Registry) Register(id EntityID, descriptors Descriptors) RegisterResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()

	descriptors = append(Descriptors(nil), descriptors...)
	result := RegisterResult{ID: id}
	existing, known := r.entries[id]

	if pending, ok := r.pending[id]; ok {
		delete(r.pending, id)
		fresh := newEntry(descriptors)
		r.entries[id] = fresh
		if len(pending) != len(descriptors) {
			r.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticPendingDiscarded, EntityID: id, Position: -1})
			result.Outcome = OutcomeMigrated
			return result
		}
		result.Outcome = OutcomePendingClaimed
		result.Applied, result.Healed = r.apply(id, fresh, valuesToCache(pending))
		return result
	}

	switch {
	case !known:
		r.entries[id] = newEntry(descriptors)
		result.Outcome = OutcomeInserted
	case len(existing.descriptors) != len(descriptors):
		r.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticSchemaMigration, EntityID: id, Position: -1})
		r.entries[id] = newEntry(descriptors)
		result.Outcome = OutcomeMigrated
	default:
		cached := existing.values
		existing.descriptors = descriptors
		existing.values = make([]cachedValue, len(descriptors))
		result.Outcome = OutcomeReclaimed
		result.Applied, result.Healed = r.apply(id, existing, cached)
	}
	return result
}

// Apply pushes loaded values into a registered entity, or parks them as
// pending when id has not registered yet. Values whose count disagrees with
// the registered descriptors are dropped and the live values kept.
func (r *Registry) Apply(id EntityID, values []Value) ApplyResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()

	result := ApplyResult{ID: id}
	current, ok := r.entries[id]
	if !ok {
		r.pending[id] = append([]Value(nil), values...)
		result.Pending = true
		return result
	}
	if len(current.descriptors) != len(values) {
		r.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticSchemaMigration, EntityID: id, Position: -1})
		result.Dropped = true
		return result
	}
	result.Applied, result.Healed = r.apply(id, current, valuesToCache(values))
	return result
}

// apply writes cached values positionally into e. Rejected writes fall back
// to the accessor's current value. Callers hold r.mu.
func (r *Registry) apply(id EntityID, e *entry, cached []cachedValue) (applied, healed int) {
	for i, accessor := range e.descriptors {
		if i >= len(cached) || !cached[i].ok {
			continue
		}
		if err := accessor.Write(cached[i].value); err != nil {
			r.logger.LogDiagnostic(Diagnostic{Kind: DiagnosticTypeMismatch, EntityID: id, Position: i, Err: err})
			e.values[i] = cacheOf(accessor.Read())
			healed++
			continue
		}
		e.values[i] = cached[i]
		applied++
	}
	return applied, healed
}

// Capture reads every registered entity, refreshes the cached values and
// returns the reads ordered by id.
func (r *Registry) Capture() []Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()

	ids := r.sortedIDs()
	captures := make([]Capture, 0, len(ids))
	for _, id := range ids {
		e := r.entries[id]
		values := e.descriptors.Read()
		for i, value := range values {
			e.values[i] = cacheOf(value)
		}
		captures = append(captures, Capture{ID: id, Values: values})
	}
	return captures
}

// Pending returns the values parked for id, if any.
func (r *Registry) Pending(id EntityID) ([]Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	values, ok := r.pending[id]
	if !ok {
		return nil, false
	}
	return append([]Value(nil), values...), true
}

// Cached returns the last known values for a registered id. Positions without
// a known value are reported as invalid tags.
func (r *Registry) Cached(id EntityID) ([]Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(e.values))
	for i, cached := range e.values {
		if cached.ok {
			out[i] = cached.value
		}
	}
	return out, true
}

// Registered reports whether id has an entry.
func (r *Registry) Registered(id EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Unregister removes the entry for id and reports whether it existed.
// Pending values are left in place.
func (r *Registry) Unregister(id EntityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear drops every entry and every pending value.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[EntityID]*entry)
	r.pending = make(map[EntityID][]Value)
}

func (r *Registry) sortedIDs() []EntityID {
	ids := make([]EntityID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func valuesToCache(values []Value) []cachedValue {
	out := make([]cachedValue, len(values))
	for i, value := range values {
		out[i] = cacheOf(value)
	}
	return out
}

func cacheOf(value Value) cachedValue {
	if value.Tag == TagObject {
		value.V = clone.Of(value.V)
	}
	return cachedValue{value: value, ok: true}
}

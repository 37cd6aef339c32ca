package savestate

// FieldDescriptor describes one position of a registered entity.
type FieldDescriptor struct {
	Position int    `json:"position"`
	Tag      Tag    `json:"type"`
	TagName  string `json:"type_name"`
	Cached   bool   `json:"cached"`
}

// EntityDescriptor describes the persistable shape of one registered entity.
type EntityDescriptor struct {
	ID     EntityID          `json:"id"`
	Fields []FieldDescriptor `json:"fields"`
}

// Describe lists every registered entity ordered by id. Pending values are
// not included since they have no shape until claimed.
func (r *Registry) Describe() []EntityDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.sortedIDs()
	out := make([]EntityDescriptor, 0, len(ids))
	for _, id := range ids {
		e := r.entries[id]
		fields := make([]FieldDescriptor, len(e.descriptors))
		for i, accessor := range e.descriptors {
			tag := accessor.Tag()
			fields[i] = FieldDescriptor{
				Position: i,
				Tag:      tag,
				TagName:  tag.String(),
				Cached:   e.values[i].ok,
			}
		}
		out = append(out, EntityDescriptor{ID: id, Fields: fields})
	}
	return out
}

package savestate

import (
	"encoding/json"
	"time"
)

// EntityStatus is the result of loading one entity from a save.
type EntityStatus string

const (
	// StatusApplied means values were written into a registered entity.
	StatusApplied EntityStatus = "applied"
	// StatusPending means values were parked until the entity registers.
	StatusPending EntityStatus = "pending"
	// StatusRejected means the entity failed integrity or guard checks.
	StatusRejected EntityStatus = "rejected"
	// StatusDropped means the registered entity has a different field count.
	StatusDropped EntityStatus = "dropped"
)

// EntityOutcome details what happened to one entity during a load.
type EntityOutcome struct {
	ID      EntityID     `json:"id"`
	Status  EntityStatus `json:"status"`
	Applied int          `json:"applied,omitempty"`
	Healed  int          `json:"healed,omitempty"`
	Reason  string       `json:"reason,omitempty"`
}

// LoadReport summarises a completed load.
type LoadReport struct {
	SaveID   string          `json:"save_id,omitempty"`
	SavedAt  time.Time       `json:"saved_at"`
	Entities []EntityOutcome `json:"entities"`
}

// Count returns how many entities finished with status.
func (r LoadReport) Count(status EntityStatus) int {
	n := 0
	for _, outcome := range r.Entities {
		if outcome.Status == status {
			n++
		}
	}
	return n
}

// Outcome returns the outcome recorded for id.
func (r LoadReport) Outcome(id EntityID) (EntityOutcome, bool) {
	for _, outcome := range r.Entities {
		if outcome.ID == id {
			return outcome, true
		}
	}
	return EntityOutcome{}, false
}

// ToJSON serialises the report for logging or transport helpers.
func (r LoadReport) ToJSON() ([]byte, error) {
	type alias LoadReport
	return json.Marshal(alias(r))
}

// LoadReportFromJSON deserialises a payload produced by ToJSON.
func LoadReportFromJSON(payload []byte) (LoadReport, error) {
	type alias LoadReport
	var report alias
	if err := json.Unmarshal(payload, &report); err != nil {
		return LoadReport{}, err
	}
	return LoadReport(report), nil
}

// SaveReport summarises a completed save.
type SaveReport struct {
	SaveID   string    `json:"save_id"`
	SavedAt  time.Time `json:"saved_at"`
	Entities int       `json:"entities"`
	Bytes    int       `json:"bytes"`
}

package savestate

import (
	"context"
	"sync"
	"testing"
)

// monster mirrors the battle unit shape used throughout these tests:
// [(text,"Goblin"), (int,3), (int,10), (int,10), (int,2)].
type monster struct {
	Name      string
	Level     int
	Health    int
	MaxHealth int
	Attack    int
}

func goblin() *monster {
	return &monster{Name: "Goblin", Level: 3, Health: 10, MaxHealth: 10, Attack: 2}
}

func (m *monster) descriptors() Descriptors {
	return Descriptors{
		Text(func() string { return m.Name }, func(v string) { m.Name = v }),
		Int(func() int { return m.Level }, func(v int) { m.Level = v }),
		Int(func() int { return m.Health }, func(v int) { m.Health = v }),
		Int(func() int { return m.MaxHealth }, func(v int) { m.MaxHealth = v }),
		Int(func() int { return m.Attack }, func(v int) { m.Attack = v }),
	}
}

type diagnosticRecorder struct {
	mu     sync.Mutex
	events []Diagnostic
}

func (r *diagnosticRecorder) LogDiagnostic(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, d)
}

func (r *diagnosticRecorder) kinds() []DiagnosticKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]DiagnosticKind, len(r.events))
	for i, event := range r.events {
		kinds[i] = event.Kind
	}
	return kinds
}

func (r *diagnosticRecorder) count(kind DiagnosticKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

func mustSave(t *testing.T, svc *Service) SaveReport {
	t.Helper()
	report, err := svc.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return report
}

func mustLoad(t *testing.T, svc *Service) LoadReport {
	t.Helper()
	report, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return report
}

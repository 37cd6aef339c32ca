package battle

import (
	"context"
	"testing"

	"github.com/goliatone/go-savestate"
)

func TestUnitTakeDamageClampsAtZero(t *testing.T) {
	u := NewUnit("Goblin", 3, 10, 2)

	if dead := u.TakeDamage(4); dead {
		t.Fatalf("expected goblin alive after 4 damage")
	}
	if u.Health != 6 {
		t.Fatalf("expected health 6, got %d", u.Health)
	}
	if dead := u.TakeDamage(50); !dead {
		t.Fatalf("expected goblin dead after overkill")
	}
	if u.Health != 0 {
		t.Fatalf("expected health clamped to 0, got %d", u.Health)
	}
}

func TestUnitTakeDamageIgnoresNonPositive(t *testing.T) {
	u := NewUnit("Hero", 1, 20, 5)
	u.TakeDamage(-3)
	u.TakeDamage(0)
	if u.Health != 20 {
		t.Fatalf("expected health unchanged, got %d", u.Health)
	}
}

func TestUnitHealCapsAtMax(t *testing.T) {
	u := NewUnit("Hero", 1, 20, 5)
	u.Health = 18
	u.Heal(HealAmount)
	if u.Health != 20 {
		t.Fatalf("expected heal capped at 20, got %d", u.Health)
	}

	u.Health = 10
	u.Heal(HealAmount)
	if u.Health != 15 {
		t.Fatalf("expected 15 after heal, got %d", u.Health)
	}

	u.Heal(-4)
	if u.Health != 15 {
		t.Fatalf("negative heal changed health to %d", u.Health)
	}
}

func TestUnitReset(t *testing.T) {
	u := NewUnit("Hero", 1, 20, 5)
	u.TakeDamage(19)
	u.Reset()
	if u.Health != u.MaxHealth {
		t.Fatalf("expected full health after reset, got %d", u.Health)
	}
}

func TestUnitDescriptorsOrder(t *testing.T) {
	u := NewUnit("Goblin", 3, 10, 2)
	values := u.Descriptors().Read()
	want := []savestate.Value{
		savestate.TextValue("Goblin"),
		savestate.IntValue(3),
		savestate.IntValue(10),
		savestate.IntValue(10),
		savestate.IntValue(2),
	}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], values[i])
		}
	}
}

func TestUnitPersistsThroughService(t *testing.T) {
	ctx := context.Background()
	svc := savestate.New(nil)

	hero := NewUnit("Hero", 2, 20, 5)
	hero.Register(svc, 1)
	hero.TakeDamage(7)

	if _, err := svc.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	hero.Reset()
	hero.Name = "Changed"
	report, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := report.Count(savestate.StatusApplied); got != 1 {
		t.Fatalf("expected one applied entity, got %d", got)
	}
	if hero.Health != 13 || hero.Name != "Hero" {
		t.Fatalf("expected restored hero, got %+v", *hero)
	}
}

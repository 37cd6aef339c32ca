// Package battle is a small turn based battle that persists its units
// through savestate.
package battle

import "github.com/goliatone/go-savestate"

// Registrar is the part of savestate.Service a unit needs.
type Registrar interface {
	Register(id savestate.EntityID, descriptors savestate.Descriptors) savestate.RegisterResult
}

// Unit is one combatant.
type Unit struct {
	Name         string
	Level        int
	Health       int
	MaxHealth    int
	AttackDamage int
}

// NewUnit returns a unit at full health.
func NewUnit(name string, level, maxHealth, attack int) *Unit {
	return &Unit{
		Name:         name,
		Level:        level,
		Health:       maxHealth,
		MaxHealth:    maxHealth,
		AttackDamage: attack,
	}
}

// Descriptors exposes the persisted fields in a fixed order. Reordering them
// breaks existing saves.
func (u *Unit) Descriptors() savestate.Descriptors {
	return savestate.Descriptors{
		savestate.Text(func() string { return u.Name }, func(v string) { u.Name = v }),
		savestate.Int(func() int { return u.Level }, func(v int) { u.Level = v }),
		savestate.Int(func() int { return u.Health }, func(v int) { u.Health = v }),
		savestate.Int(func() int { return u.MaxHealth }, func(v int) { u.MaxHealth = v }),
		savestate.Int(func() int { return u.AttackDamage }, func(v int) { u.AttackDamage = v }),
	}
}

// Register binds the unit's fields under id.
func (u *Unit) Register(r Registrar, id savestate.EntityID) savestate.RegisterResult {
	return r.Register(id, u.Descriptors())
}

// Reset restores full health.
func (u *Unit) Reset() {
	u.Health = u.MaxHealth
}

// TakeDamage subtracts amount, never going below zero, and reports whether
// the unit is dead. Non-positive amounts do nothing.
func (u *Unit) TakeDamage(amount int) bool {
	if amount > 0 {
		u.Health -= min(amount, u.Health)
	}
	if u.Health < 0 {
		u.Health = 0
	}
	return u.Health == 0
}

// Heal adds amount up to MaxHealth.
func (u *Unit) Heal(amount int) {
	if amount <= 0 || u.Health >= u.MaxHealth {
		return
	}
	u.Health += min(amount, u.MaxHealth-u.Health)
}

// Dead reports whether the unit has no health left.
func (u *Unit) Dead() bool {
	return u.Health <= 0
}

package battle

import (
	"errors"
	"fmt"
	"time"
)

// State is the phase of a battle.
type State int

const (
	StateStart State = iota
	StatePlayerTurn
	StateEnemyTurn
	StateWon
	StateLost
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StatePlayerTurn:
		return "player_turn"
	case StateEnemyTurn:
		return "enemy_turn"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Side identifies a combatant for presentation.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// Animation triggers sent to the Presenter.
const (
	TriggerPlayerAttack = "playerAttack"
	TriggerEnemyAttack  = "enemyAttack"
	TriggerEnemyDead    = "enemyDead"
	TriggerPlayerDead   = "playerDead"
)

// HealAmount is how much the heal action restores.
const HealAmount = 5

var ErrNotPlayerTurn = errors.New("battle: not the player's turn")

// Presenter renders what the sequencer decides. Calls happen synchronously
// from Begin, the actions and Advance.
type Presenter interface {
	Say(text string)
	Animate(trigger string)
	ResetAnimation(trigger string)
	SetHealth(side Side, health int)
	ShowActions(visible bool)
}

// NopPresenter ignores every call.
type NopPresenter struct{}

func (NopPresenter) Say(string) {}
func (NopPresenter) Animate(string) {}
func (NopPresenter) ResetAnimation(string) {}
func (NopPresenter) SetHealth(Side, int) {}
func (NopPresenter) ShowActions(bool) {}

// Pauses are the waits between battle steps.
type Pauses struct {
	Setup    time.Duration
	Step     time.Duration
	Handover time.Duration
}

// DefaultPauses matches the pacing of the original battle screen.
var DefaultPauses = Pauses{Setup: 2 * time.Second, Step: time.Second, Handover: 2 * time.Second}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPauses overrides the step timings.
func WithPauses(p Pauses) Option {
	return func(s *Sequencer) {
		s.pauses = p
	}
}

// WithPresenter sets where dialogue and animation go.
func WithPresenter(p Presenter) Option {
	return func(s *Sequencer) {
		if p != nil {
			s.presenter = p
		}
	}
}

type step struct {
	wait time.Duration
	run  func()
}

// Sequencer runs a battle between a player and an enemy as a state machine.
// Timed pauses are queued steps released by Advance; nothing runs on its own.
type Sequencer struct {
	player    *Unit
	enemy     *Unit
	presenter Presenter
	pauses    Pauses

	state  State
	queue  []step
	waited time.Duration
}

func NewSequencer(player, enemy *Unit, opts ...Option) *Sequencer {
	s := &Sequencer{
		player:    player,
		enemy:     enemy,
		presenter: NopPresenter{},
		pauses:    DefaultPauses,
		state:     StateStart,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) Player() *Unit { return s.player }

func (s *Sequencer) Enemy() *Unit { return s.enemy }

// Idle reports whether no timed step is waiting.
func (s *Sequencer) Idle() bool { return len(s.queue) == 0 }

// Over reports whether the battle reached Won or Lost.
func (s *Sequencer) Over() bool {
	return s.state == StateWon || s.state == StateLost
}

// Begin shows the encounter and hands the first turn to the player after
// the setup pause.
func (s *Sequencer) Begin() {
	s.state = StateStart
	s.queue = nil
	s.waited = 0
	s.presenter.ShowActions(false)
	s.presenter.Say(fmt.Sprintf("You encountered a %s!", s.enemy.Name))
	s.presenter.SetHealth(SidePlayer, s.player.Health)
	s.presenter.SetHealth(SideEnemy, s.enemy.Health)
	s.after(s.pauses.Setup, func() {
		s.state = StatePlayerTurn
		s.playerTurn()
	})
}

// Attack damages the enemy. Only allowed during an idle player turn.
func (s *Sequencer) Attack() error {
	if err := s.acceptAction(); err != nil {
		return err
	}
	s.presenter.Animate(TriggerPlayerAttack)
	dead := s.enemy.TakeDamage(s.player.AttackDamage)
	s.presenter.SetHealth(SideEnemy, s.enemy.Health)
	s.presenter.Say("The attack is successful!")

	s.after(s.pauses.Step, func() {
		s.presenter.Say(fmt.Sprintf("You dealt %d damage!", s.player.AttackDamage))
		s.presenter.ResetAnimation(TriggerPlayerAttack)
		if dead {
			s.state = StateWon
			s.after(s.pauses.Handover, s.endBattle)
			return
		}
		s.state = StateEnemyTurn
		s.after(s.pauses.Handover, s.enemyTurn)
	})
	return nil
}

// Heal restores HealAmount health and ends the player's turn.
func (s *Sequencer) Heal() error {
	if err := s.acceptAction(); err != nil {
		return err
	}
	s.player.Heal(HealAmount)
	s.presenter.SetHealth(SidePlayer, s.player.Health)
	s.presenter.Say("You feel renewed strength!")
	s.state = StateEnemyTurn
	s.after(s.pauses.Handover, s.enemyTurn)
	return nil
}

// Advance moves the battle clock forward, running every step whose pause
// has elapsed. Steps queued by a running step count from when it ran.
func (s *Sequencer) Advance(elapsed time.Duration) {
	if elapsed > 0 {
		s.waited += elapsed
	}
	for len(s.queue) > 0 && s.waited >= s.queue[0].wait {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.waited -= next.wait
		next.run()
	}
	if len(s.queue) == 0 {
		s.waited = 0
	}
}

func (s *Sequencer) acceptAction() error {
	if s.state != StatePlayerTurn || !s.Idle() {
		return fmt.Errorf("%w: %s", ErrNotPlayerTurn, s.state)
	}
	s.presenter.ShowActions(false)
	return nil
}

func (s *Sequencer) after(wait time.Duration, run func()) {
	s.queue = append(s.queue, step{wait: wait, run: run})
}

func (s *Sequencer) playerTurn() {
	s.presenter.Say("Choose an action:")
	s.presenter.ShowActions(true)
}

func (s *Sequencer) enemyTurn() {
	s.presenter.Say(fmt.Sprintf("%s attacks!", s.enemy.Name))
	s.presenter.Animate(TriggerEnemyAttack)

	s.after(s.pauses.Step, func() {
		dead := s.player.TakeDamage(s.enemy.AttackDamage)
		s.presenter.SetHealth(SidePlayer, s.player.Health)

		s.after(s.pauses.Step, func() {
			s.presenter.ResetAnimation(TriggerEnemyAttack)
			if dead {
				s.state = StateLost
				s.endBattle()
				return
			}
			s.state = StatePlayerTurn
			s.playerTurn()
		})
	})
}

func (s *Sequencer) endBattle() {
	switch s.state {
	case StateWon:
		s.presenter.Animate(TriggerEnemyDead)
		s.presenter.Say("You won the battle!")
	case StateLost:
		s.presenter.Say("You lost.")
		s.presenter.Animate(TriggerPlayerDead)
	}
}

// Package strategy holds the signal-to-position state machine. The state is
// an explicit three-valued type with a single transition function, which
// makes "at most one open trade" true by construction: a trade opens exactly
// on a Flat->held transition and closes exactly on a held->Flat transition.
package strategy

import (
	"fmt"

	"github.com/quantfold/pairtrade/internal/domain"
)

// Config holds the entry/exit thresholds in z-score units.
type Config struct {
	EntryZ         float64 `yaml:"entry_z"`          // open when |z| >= EntryZ
	ExitZ          float64 `yaml:"exit_z"`           // close when z reverts inside +/-ExitZ
	MaxHoldingBars int     `yaml:"max_holding_bars"` // 0 disables the safety stop
}

// DefaultConfig mirrors the conventional two-sigma entry, half-sigma exit.
func DefaultConfig() Config {
	return Config{EntryZ: 2.0, ExitZ: 0.5, MaxHoldingBars: 0}
}

// Validate checks the parameter domains.
func (c Config) Validate() error {
	if c.EntryZ <= 0 {
		return fmt.Errorf("entry_z must be > 0, got %f", c.EntryZ)
	}
	if c.ExitZ < 0 || c.ExitZ >= c.EntryZ {
		return fmt.Errorf("exit_z must be in [0, entry_z), got %f", c.ExitZ)
	}
	if c.MaxHoldingBars < 0 {
		return fmt.Errorf("max_holding_bars must be >= 0, got %d", c.MaxHoldingBars)
	}
	return nil
}

// Action classifies what a step did to the position.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionClose
)

// Decision is the outcome of one step: the state that now holds, and
// whether the step opened or closed a position. Reason is set on close.
type Decision struct {
	State  domain.Position
	Action Action
	Reason domain.ExitReason
}

// Machine advances the position one timestamp at a time. It runs to the end
// of the series; the caller force-closes any dangling position at the final
// mark.
type Machine struct {
	cfg      Config
	state    domain.Position
	heldBars int
}

// NewMachine starts Flat.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, state: domain.Flat}
}

// State returns the currently held position.
func (m *Machine) State() domain.Position { return m.state }

// Step evaluates one timestamp. z is the spread z-score (possibly absent);
// regimeOK is the gate value for the step (an undefined gate counts as
// false — no entries during the filter's warm-up, forced exit on a gate
// that drops out mid-hold).
func (m *Machine) Step(z domain.OptFloat, regimeOK bool) Decision {
	switch m.state {
	case domain.Flat:
		if !z.Valid || !regimeOK {
			return Decision{State: domain.Flat}
		}
		if z.Value <= -m.cfg.EntryZ {
			m.state = domain.LongSpread
			m.heldBars = 1
			return Decision{State: m.state, Action: ActionOpen}
		}
		if z.Value >= m.cfg.EntryZ {
			m.state = domain.ShortSpread
			m.heldBars = 1
			return Decision{State: m.state, Action: ActionOpen}
		}
		return Decision{State: domain.Flat}

	case domain.LongSpread:
		if !z.Valid {
			return m.close(domain.ExitDataGap)
		}
		if !regimeOK {
			return m.close(domain.ExitRegime)
		}
		if z.Value >= -m.cfg.ExitZ {
			return m.close(domain.ExitTarget)
		}
		return m.hold()

	case domain.ShortSpread:
		if !z.Valid {
			return m.close(domain.ExitDataGap)
		}
		if !regimeOK {
			return m.close(domain.ExitRegime)
		}
		if z.Value <= m.cfg.ExitZ {
			return m.close(domain.ExitTarget)
		}
		return m.hold()
	}
	return Decision{State: m.state}
}

// ForceClose flattens a held position, typically at the final mark. No-op
// when already flat.
func (m *Machine) ForceClose(reason domain.ExitReason) Decision {
	if m.state == domain.Flat {
		return Decision{State: domain.Flat}
	}
	return m.close(reason)
}

func (m *Machine) hold() Decision {
	m.heldBars++
	if m.cfg.MaxHoldingBars > 0 && m.heldBars > m.cfg.MaxHoldingBars {
		return m.close(domain.ExitMaxHold)
	}
	return Decision{State: m.state}
}

func (m *Machine) close(reason domain.ExitReason) Decision {
	m.state = domain.Flat
	m.heldBars = 0
	return Decision{State: domain.Flat, Action: ActionClose, Reason: reason}
}

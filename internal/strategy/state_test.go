package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairtrade/internal/domain"
)

func cfg() Config { return Config{EntryZ: 2.0, ExitZ: 0.5} }

func z(v float64) domain.OptFloat { return domain.Float(v) }

func TestMachine_EntryTransitions(t *testing.T) {
	testCases := []struct {
		name      string
		z         domain.OptFloat
		regime    bool
		wantState domain.Position
		wantOpen  bool
	}{
		{"cheap spread opens long", z(-2.5), true, domain.LongSpread, true},
		{"rich spread opens short", z(2.5), true, domain.ShortSpread, true},
		{"exact entry threshold opens", z(-2.0), true, domain.LongSpread, true},
		{"inside band stays flat", z(1.0), true, domain.Flat, false},
		{"regime false blocks entry", z(-3.0), false, domain.Flat, false},
		{"absent z stays flat", domain.Absent(), true, domain.Flat, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine(cfg())
			d := m.Step(tc.z, tc.regime)
			assert.Equal(t, tc.wantState, d.State)
			if tc.wantOpen {
				assert.Equal(t, ActionOpen, d.Action)
			} else {
				assert.Equal(t, ActionNone, d.Action)
			}
		})
	}
}

func TestMachine_LongExit(t *testing.T) {
	testCases := []struct {
		name       string
		z          domain.OptFloat
		regime     bool
		wantClose  bool
		wantReason domain.ExitReason
	}{
		{"reversion to exit band", z(-0.4), true, true, domain.ExitTarget},
		{"reversion past zero", z(1.2), true, true, domain.ExitTarget},
		{"still stretched holds", z(-1.5), true, false, ""},
		{"regime invalidated", z(-3.0), false, true, domain.ExitRegime},
		{"data gap", domain.Absent(), true, true, domain.ExitDataGap},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine(cfg())
			require.Equal(t, ActionOpen, m.Step(z(-2.5), true).Action)

			d := m.Step(tc.z, tc.regime)
			if tc.wantClose {
				assert.Equal(t, ActionClose, d.Action)
				assert.Equal(t, domain.Flat, d.State)
				assert.Equal(t, tc.wantReason, d.Reason)
			} else {
				assert.Equal(t, ActionNone, d.Action)
				assert.Equal(t, domain.LongSpread, d.State)
			}
		})
	}
}

func TestMachine_ShortExitMirror(t *testing.T) {
	m := NewMachine(cfg())
	require.Equal(t, ActionOpen, m.Step(z(2.5), true).Action)

	// still stretched above the exit band: hold
	d := m.Step(z(1.4), true)
	assert.Equal(t, ActionNone, d.Action)
	assert.Equal(t, domain.ShortSpread, d.State)

	// reversion down through +exit closes
	d = m.Step(z(0.5), true)
	assert.Equal(t, ActionClose, d.Action)
	assert.Equal(t, domain.ExitTarget, d.Reason)
}

func TestMachine_ReentrySameDirectionIsNoOp(t *testing.T) {
	m := NewMachine(cfg())
	require.Equal(t, ActionOpen, m.Step(z(-2.5), true).Action)

	// deeper stretch while already long: same trade, no new open
	d := m.Step(z(-3.5), true)
	assert.Equal(t, ActionNone, d.Action)
	assert.Equal(t, domain.LongSpread, d.State)
}

func TestMachine_NoFlipInOneStep(t *testing.T) {
	m := NewMachine(cfg())
	require.Equal(t, ActionOpen, m.Step(z(-2.5), true).Action)

	// z jumps through the whole band: close only, re-entry waits a step
	d := m.Step(z(3.0), true)
	assert.Equal(t, ActionClose, d.Action)
	assert.Equal(t, domain.Flat, d.State)

	d = m.Step(z(3.0), true)
	assert.Equal(t, ActionOpen, d.Action)
	assert.Equal(t, domain.ShortSpread, d.State)
}

func TestMachine_MaxHoldingBars(t *testing.T) {
	c := cfg()
	c.MaxHoldingBars = 3
	m := NewMachine(c)
	require.Equal(t, ActionOpen, m.Step(z(-2.5), true).Action)

	assert.Equal(t, ActionNone, m.Step(z(-2.4), true).Action) // bar 2
	assert.Equal(t, ActionNone, m.Step(z(-2.4), true).Action) // bar 3
	d := m.Step(z(-2.4), true)                                // bar 4: over the cap
	assert.Equal(t, ActionClose, d.Action)
	assert.Equal(t, domain.ExitMaxHold, d.Reason)
}

func TestMachine_ForceClose(t *testing.T) {
	m := NewMachine(cfg())
	assert.Equal(t, ActionNone, m.ForceClose(domain.ExitFinalMark).Action)

	require.Equal(t, ActionOpen, m.Step(z(2.5), true).Action)
	d := m.ForceClose(domain.ExitFinalMark)
	assert.Equal(t, ActionClose, d.Action)
	assert.Equal(t, domain.ExitFinalMark, d.Reason)
	assert.Equal(t, domain.Flat, m.State())
}

func TestMachine_OpenCloseBalance(t *testing.T) {
	// property: opens == closes after an even walk, +-1 with a dangling open
	zs := []float64{0, -2.1, -1.8, -0.2, 2.3, 1.0, 0.4, -2.6}
	m := NewMachine(cfg())
	opens, closes := 0, 0
	for _, v := range zs {
		d := m.Step(z(v), true)
		switch d.Action {
		case ActionOpen:
			opens++
		case ActionClose:
			closes++
		}
	}
	if m.State() != domain.Flat {
		assert.Equal(t, opens, closes+1)
	} else {
		assert.Equal(t, opens, closes)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{EntryZ: 0, ExitZ: 0}.Validate())
	assert.Error(t, Config{EntryZ: 2, ExitZ: 2}.Validate())
	assert.Error(t, Config{EntryZ: 2, ExitZ: -0.1}.Validate())
	assert.Error(t, Config{EntryZ: 2, ExitZ: 0.5, MaxHoldingBars: -1}.Validate())
}

package shipment

import (
	"testing"

	"intake-app/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_ExactMatchOnly(t *testing.T) {
	for _, s := range All {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, raw := range []string{
		"", "processing", "PROCESSING", " Processing", "Processing ", "awaiting_qc",
		"Awaiting QC", "In Transit", "in_transit", "Delivered\n", "Shipped",
	} {
		_, err := ParseStatus(raw)
		assert.True(t, apperror.Is(err, apperror.KindValidation), "%q", raw)
		assert.Equal(t, "status", apperror.FieldOf(err))
	}
}

func TestMachine_SkippingAheadDependsOnMode(t *testing.T) {
	permissive := Machine{}
	strict := Machine{Strict: true}

	assert.NoError(t, permissive.Check(Processing, "", Delivered))

	err := strict.Check(Processing, "", Delivered)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.NoError(t, strict.Check(Processing, "", Receiving))
}

func TestMachine_PermissiveAcceptsAnyLegalStatus(t *testing.T) {
	m := Machine{}
	for _, from := range HappyPath {
		for _, to := range All {
			if to == from {
				assert.Error(t, m.Check(from, "", to))
				continue
			}
			assert.NoError(t, m.Check(from, "", to), "%s -> %s", from, to)
		}
	}
}

// Setting the status a shipment already has is refused in every mode,
// including permissive, where any other legal status is accepted.
func TestMachine_SameStatusIsConflictInEveryMode(t *testing.T) {
	modes := []Machine{{}, {DelayResumable: true}, {Strict: true}, {Strict: true, DelayResumable: true}}
	for _, m := range modes {
		for _, s := range All {
			err := m.Check(s, Processing, s)
			assert.True(t, apperror.Is(err, apperror.KindConflict), "%+v %s", m, s)
			assert.Equal(t, "status", apperror.FieldOf(err))
		}
	}
	assert.Contains(t, Machine{}.Check(Receiving, "", Receiving).Error(), "already Receiving")
}

func TestMachine_StrictNeverRegresses(t *testing.T) {
	for _, m := range []Machine{{Strict: true}, {Strict: true, DelayResumable: true}} {
		err := m.Check(Receiving, "", Processing)
		assert.True(t, apperror.Is(err, apperror.KindConflict))
		assert.Contains(t, err.Error(), "override")

		assert.Error(t, m.Check(Receiving, "", Receiving))
	}
}

func TestMachine_DeliveredIsTerminalWhenStrict(t *testing.T) {
	m := Machine{Strict: true, DelayResumable: true}
	assert.Empty(t, m.Targets(Delivered, ""))
	for _, to := range All {
		err := m.Check(Delivered, "", to)
		assert.True(t, apperror.Is(err, apperror.KindConflict), "%s", to)
	}
}

func TestMachine_DelayedReachableFromEveryActiveStatus(t *testing.T) {
	for _, m := range []Machine{{}, {Strict: true}} {
		for _, from := range HappyPath[:len(HappyPath)-1] {
			assert.NoError(t, m.Check(from, "", Delayed), "%s", from)
		}
	}
}

func TestMachine_ResumeFromDelayed(t *testing.T) {
	strict := Machine{Strict: true, DelayResumable: true}
	assert.NoError(t, strict.Check(Delayed, Receiving, Receiving))
	assert.Error(t, strict.Check(Delayed, Receiving, PreparingForDispatch))
	assert.Error(t, strict.Check(Delayed, Receiving, Processing))

	permissive := Machine{DelayResumable: true}
	assert.NoError(t, permissive.Check(Delayed, Receiving, Receiving))
	assert.NoError(t, permissive.Check(Delayed, Receiving, InTransit))
	assert.NoError(t, permissive.Check(Delayed, Receiving, AwaitingQC))
	assert.Error(t, permissive.Check(Delayed, Receiving, Delayed))

	for _, absorbing := range []Machine{{}, {Strict: true}} {
		err := absorbing.Check(Delayed, Receiving, Receiving)
		assert.True(t, apperror.Is(err, apperror.KindConflict))
		assert.Contains(t, err.Error(), "override")
		assert.Empty(t, absorbing.Targets(Delayed, Receiving))
	}
}

func TestApply_TracksPreDelayStatus(t *testing.T) {
	assert.Equal(t, Receiving, Apply(Receiving, "", Delayed))
	assert.Equal(t, Receiving, Apply(Delayed, Receiving, Delayed))
	assert.Equal(t, Status(""), Apply(Delayed, Receiving, Receiving))
	assert.Equal(t, Status(""), Apply(Processing, "", Receiving))
}

func TestMachine_Table(t *testing.T) {
	strict := Machine{Strict: true}.Table()
	assert.Equal(t, []Status{Processing, Delayed}, strict[AwaitingQC])
	assert.Equal(t, []Status{Delivered, Delayed}, strict[InTransit])
	assert.Empty(t, strict[Delivered])

	permissive := Machine{}.Table()
	assert.Len(t, permissive[AwaitingQC], len(All)-1)
	assert.Contains(t, permissive[Receiving], Processing)
	assert.NotContains(t, permissive[Receiving], Receiving)
}

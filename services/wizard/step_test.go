package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepOrderIsTotal(t *testing.T) {
	require.Equal(t, 6, StepCount())
	assert.Equal(t, 0, StepConsultantSelection.Index())
	assert.Equal(t, 1, StepTimeSlotSelection.Index())
	assert.Equal(t, 2, StepContactInfo.Index())
	assert.Equal(t, 3, StepBillingInfo.Index())
	assert.Equal(t, 4, StepPayment.Index())
	assert.Equal(t, 5, StepConfirmation.Index())
	assert.Equal(t, -1, Step("checkout").Index())
}

func TestSequencerWalksEveryStepWithoutSkipping(t *testing.T) {
	seq := NewSequencer(FirstStep())

	visited := []Step{seq.Current()}
	for !seq.IsTerminal() {
		visited = append(visited, seq.Next())
	}
	require.Equal(t, stepOrder, visited)
}

func TestSequencerBoundsAreAbsorbing(t *testing.T) {
	seq := NewSequencer(StepConsultantSelection)
	assert.Equal(t, StepConsultantSelection, seq.Previous())
	assert.True(t, seq.IsFirst())

	seq = NewSequencer(StepConfirmation)
	assert.Equal(t, StepConfirmation, seq.Next())
	assert.True(t, seq.IsTerminal())
}

func TestNewSequencerFallsBackToFirstStep(t *testing.T) {
	seq := NewSequencer(Step("not-a-step"))
	assert.Equal(t, StepConsultantSelection, seq.Current())
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep("billing-info")
	require.NoError(t, err)
	assert.Equal(t, StepBillingInfo, s)

	_, err = ParseStep("summary")
	assert.Error(t, err)
}

package wizard

import "fmt"

// Step identifies one position in the booking wizard. The order is total and
// fixed; the sequencer never skips a step.
type Step string

const (
	StepConsultantSelection Step = "consultant-selection"
	StepTimeSlotSelection   Step = "time-slot-selection"
	StepContactInfo         Step = "contact-info"
	StepBillingInfo         Step = "billing-info"
	StepPayment             Step = "payment"
	StepConfirmation        Step = "confirmation"
)

var stepOrder = []Step{
	StepConsultantSelection,
	StepTimeSlotSelection,
	StepContactInfo,
	StepBillingInfo,
	StepPayment,
	StepConfirmation,
}

// Index returns the zero-based position of the step, or -1 for an unknown step.
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether the step is a member of the wizard sequence.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

func (s Step) String() string {
	return string(s)
}

// StepCount returns the number of steps in the wizard.
func StepCount() int {
	return len(stepOrder)
}

// FirstStep returns the initial wizard step.
func FirstStep() Step {
	return stepOrder[0]
}

// ParseStep converts a stored step name back into a Step.
func ParseStep(raw string) (Step, error) {
	s := Step(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown wizard step %q", raw)
	}
	return s, nil
}

// Sequencer owns the current wizard position. It holds no business data and
// never validates; callers run the step's validator before invoking Next.
type Sequencer struct {
	current Step
}

// NewSequencer returns a sequencer positioned at start, or at the first step
// when start is not a valid step name.
func NewSequencer(start Step) *Sequencer {
	if !start.Valid() {
		start = FirstStep()
	}
	return &Sequencer{current: start}
}

// Current returns the step the sequencer is positioned at.
func (q *Sequencer) Current() Step {
	return q.current
}

// Next advances one position unless the sequencer is at the terminal step.
func (q *Sequencer) Next() Step {
	if i := q.current.Index(); i < len(stepOrder)-1 {
		q.current = stepOrder[i+1]
	}
	return q.current
}

// Previous regresses one position unless the sequencer is at the first step.
func (q *Sequencer) Previous() Step {
	if i := q.current.Index(); i > 0 {
		q.current = stepOrder[i-1]
	}
	return q.current
}

// Index returns the zero-based position for progress display.
func (q *Sequencer) Index() int {
	return q.current.Index()
}

// IsFirst reports whether the sequencer is at the first step.
func (q *Sequencer) IsFirst() bool {
	return q.current == FirstStep()
}

// IsTerminal reports whether the sequencer reached the confirmation step.
func (q *Sequencer) IsTerminal() bool {
	return q.current == StepConfirmation
}

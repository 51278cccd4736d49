package wizard

import "github.com/iliamunaev/quote-wizard/internal/model"

// Step names a wizard screen.
type Step string

const (
	StepZip           Step = "zip"
	StepOutOfArea     Step = "out-of-area"
	StepService       Step = "service"
	StepQuote         Step = "quote"
	StepContact       Step = "contact"
	StepDogs          Step = "dogs"
	StepNotifications Step = "notifications"
	StepPayment       Step = "payment"
	StepReview        Step = "review"
	StepSuccess       Step = "success"
)

// flow is the forward order of the main path. out-of-area sits beside it.
var flow = []Step{
	StepZip,
	StepService,
	StepQuote,
	StepContact,
	StepDogs,
	StepNotifications,
	StepPayment,
	StepReview,
	StepSuccess,
}

// position returns the index of step in flow, or -1 for out-of-area.
func position(step Step) int {
	for i, s := range flow {
		if s == step {
			return i
		}
	}
	return -1
}

// at reports whether step is at or past target on the main path.
func at(step, target Step) bool {
	p := position(step)
	return p >= 0 && p >= position(target)
}

// DogsState is the per-dog sub-wizard. It exists only while the wizard is
// on the dogs step, so the outer step and the inner index cannot drift.
type DogsState struct {
	Index   int
	Records []model.DogRecord
}

// Current returns the record at the current index.
func (d *DogsState) Current() model.DogRecord {
	return d.Records[d.Index]
}

// Last reports whether the current index is the final one.
func (d *DogsState) Last() bool {
	return d.Index == len(d.Records)-1
}

func (d *DogsState) clone() *DogsState {
	if d == nil {
		return nil
	}
	return &DogsState{Index: d.Index, Records: cloneDogs(d.Records)}
}

// State is the wizard position. Dogs is set exactly when Step is StepDogs.
type State struct {
	Step Step
	Dogs *DogsState
}

// At returns the State for a step that carries no sub-state.
func At(step Step) State {
	return State{Step: step}
}

// InDogs returns the State for the dogs step at index over records.
func InDogs(index int, records []model.DogRecord) State {
	return State{Step: StepDogs, Dogs: &DogsState{Index: index, Records: records}}
}

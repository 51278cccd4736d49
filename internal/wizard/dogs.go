package wizard

import (
	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/schema"
)

// NextDog validates the form of the current dog and stores it. At the last
// index the records are finalized and the wizard moves to notifications.
func NextDog(s Session, form model.DogForm) (Session, error) {
	if err := require(s, "next dog", StepDogs); err != nil {
		return s, err
	}
	rec, err := schema.Dog(form)
	if err != nil {
		return fail(s, err), err
	}

	s = advance(s.clone())
	d := s.State.Dogs
	d.Records[d.Index] = rec

	if !d.Last() {
		d.Index++
		return s, nil
	}
	s.Dogs = d.Records
	s.State = At(StepNotifications)
	return s, nil
}

// PreviousDog keeps the current edits without validating them, then steps
// back one dog. From the first dog it returns to the contact step with the
// drafts saved for the next pass.
func PreviousDog(s Session, form model.DogForm) (Session, error) {
	if err := require(s, "previous dog", StepDogs); err != nil {
		return s, err
	}

	s = advance(s.clone())
	d := s.State.Dogs
	d.Records[d.Index] = schema.DogRecord(form)

	if d.Index > 0 {
		d.Index--
		return s, nil
	}
	s.Dogs = d.Records
	s.State = At(StepContact)
	return s, nil
}

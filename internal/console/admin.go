package console

import (
	"context"
	"fmt"

	"github.com/tbourn/go-shelter-backend/internal/services"
)

func (s *Shell) adminPanel(ctx context.Context) error {
	return s.panel("ADMINISTRATOR",
		[]string{
			"1. All animals (including adopted)",
			"2. Add an animal",
			"3. Remove / change an animal's status",
			"4. All adoption requests",
			"5. Approve a request",
			"6. Reject a request",
		},
		map[string]func() error{
			"1": func() error { return s.showAllAnimals(ctx) },
			"2": func() error { return s.addAnimal(ctx) },
			"3": func() error { return s.changeStatus(ctx) },
			"4": func() error { return s.showAllRequests(ctx) },
			"5": func() error { return s.decide(ctx, "approve", s.adoption.ApproveRequest, "Request approved; the animal is marked adopted.") },
			"6": func() error { return s.decide(ctx, "reject", s.adoption.RejectRequest, "Request rejected.") },
		},
	)
}

func (s *Shell) showAllAnimals(ctx context.Context) error {
	s.println("\nAll animals:")
	animals, err := s.animals.ListAll(ctx)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(animals) == 0 {
		s.println(s.st.dim("No animals."))
	}
	for _, a := range animals {
		s.println(animalLine(a))
	}
	return nil
}

func (s *Shell) addAnimal(ctx context.Context) error {
	var in services.AnimalInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"Name: ", &in.Name},
		{"Species: ", &in.Species},
		{"Breed: ", &in.Breed},
	}
	for _, f := range fields {
		v, err := s.prompt(f.label)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	rawAge, err := s.prompt("Age: ")
	if err != nil {
		return err
	}
	age, err := services.ParseAge(rawAge)
	if err != nil {
		s.report(err)
		return nil
	}
	in.Age = &age

	if in.HealthStatus, err = s.prompt("Health: "); err != nil {
		return err
	}
	if in.ArrivalDate, err = s.prompt("Arrival date (YYYY-MM-DD, blank for today): "); err != nil {
		return err
	}

	a, err := s.animals.AddAnimal(ctx, in)
	if err != nil {
		s.report(err)
		return nil
	}
	s.println(s.st.ok(fmt.Sprintf("Added! ID: %d", a.ID)))
	return nil
}

func (s *Shell) changeStatus(ctx context.Context) error {
	id, ok, err := s.promptID("Animal ID: ", "animal_id")
	if err != nil || !ok {
		return err
	}
	text, err := s.prompt("Reason (available / adopted ... / died, transferred ...): ")
	if err != nil {
		return err
	}
	status, reason, err := services.StatusFromReason(text)
	if err == nil {
		err = s.animals.SetStatus(ctx, id, status, reason)
	}
	if err != nil {
		s.report(err)
		return nil
	}
	s.println(s.st.ok("Status updated."))
	return nil
}

func (s *Shell) showAllRequests(ctx context.Context) error {
	s.println("\nAll requests:")
	reqs, err := s.adoption.ListAll(ctx)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(reqs) == 0 {
		s.println(s.st.dim("No requests."))
	}
	for _, r := range reqs {
		s.println(requestLine(r))
	}
	return nil
}

// decide runs an approve or reject transition on a prompted request id.
func (s *Shell) decide(ctx context.Context, verb string, apply func(context.Context, uint) error, done string) error {
	id, ok, err := s.promptID(fmt.Sprintf("Request ID to %s: ", verb), "request_id")
	if err != nil || !ok {
		return err
	}
	if err := apply(ctx, id); err != nil {
		s.report(err)
		return nil
	}
	s.println(s.st.ok(done))
	return nil
}

// promptID reads and parses an id. ok is false when the input was rejected
// and already reported.
func (s *Shell) promptID(label, field string) (id uint, ok bool, err error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	id, perr := services.ParseID(field, raw)
	if perr != nil {
		s.report(perr)
		return 0, false, nil
	}
	return id, true, nil
}

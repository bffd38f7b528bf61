package console

import (
	"context"
	"fmt"

	"github.com/tbourn/go-shelter-backend/internal/services"
)

func (s *Shell) clientPanel(ctx context.Context, sess services.Session) error {
	return s.panel("CLIENT",
		[]string{
			"1. Animals available for adoption",
			"2. Submit an adoption request",
			"3. My requests",
			"4. Cancel a request",
		},
		map[string]func() error{
			"1": func() error { return s.showAvailable(ctx) },
			"2": func() error { return s.submitRequest(ctx, sess) },
			"3": func() error { return s.showMyRequests(ctx, sess) },
			"4": func() error { return s.cancelRequest(ctx, sess) },
		},
	)
}

func (s *Shell) showAvailable(ctx context.Context) error {
	s.println("\nAvailable for adoption:")
	animals, err := s.animals.ListAvailable(ctx)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(animals) == 0 {
		s.println(s.st.dim("No animals available."))
	}
	for _, a := range animals {
		s.println(availableLine(a))
	}
	return nil
}

func (s *Shell) submitRequest(ctx context.Context, sess services.Session) error {
	if err := s.showAvailable(ctx); err != nil {
		return err
	}
	id, ok, err := s.promptID("\nAnimal ID: ", "animal_id")
	if err != nil || !ok {
		return err
	}
	req, err := s.adoption.CreateRequest(ctx, sess, id)
	if err != nil {
		s.report(err)
		return nil
	}
	s.println(s.st.ok(fmt.Sprintf("Request filed! Number: %d", req.ID)))
	return nil
}

func (s *Shell) showMyRequests(ctx context.Context, sess services.Session) error {
	s.println(fmt.Sprintf("\nYour requests (%s):", sess.Name))
	reqs, err := s.adoption.ListByClient(ctx, sess)
	if err != nil {
		s.report(err)
		return nil
	}
	if len(reqs) == 0 {
		s.println(s.st.dim("No requests."))
	}
	for _, r := range reqs {
		s.println(myRequestLine(r))
	}
	return nil
}

func (s *Shell) cancelRequest(ctx context.Context, sess services.Session) error {
	if err := s.showMyRequests(ctx, sess); err != nil {
		return err
	}
	id, ok, err := s.promptID("\nRequest number to cancel: ", "request_id")
	if err != nil || !ok {
		return err
	}
	if err := s.adoption.CancelRequest(ctx, sess, id); err != nil {
		s.report(err)
		return nil
	}
	s.println(s.st.ok("Request cancelled."))
	return nil
}

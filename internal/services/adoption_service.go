// Package services – AdoptionService
//
// This file implements the adoption request state machine:
//
//	pending -> approved | rejected | cancelled
//
// Every mutating operation runs in a single transaction (serializable on
// PostgreSQL). Cancellation is a single conditional update on
// (id, client_id, status = pending).
//
// Approve and reject have two modes. The default keeps the historical
// behaviour: the request is overwritten whatever its prior status and
// approval marks the animal adopted unconditionally. Strict mode only moves
// pending requests and approves through a compare-and-swap on the animal's
// availability, so two approvals for the same animal cannot both commit.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-shelter-backend/internal/domain"
	"github.com/tbourn/go-shelter-backend/internal/repo"
)

// DefaultIdempotencyTTL is how long an idempotency key is remembered when
// the service is not configured otherwise.
const DefaultIdempotencyTTL = 24 * time.Hour

// AdoptionService coordinates adoption requests against animal availability.
type AdoptionService struct {
	DB *gorm.DB

	// Strict enables the pending-only guard on approve and reject.
	Strict bool

	// IdempotencyTTL bounds how long CreateRequestIdempotent replays a key.
	IdempotencyTTL time.Duration

	now func() time.Time
}

// NewAdoptionService returns a service in parity mode.
func NewAdoptionService(db *gorm.DB) *AdoptionService {
	return &AdoptionService{DB: db, IdempotencyTTL: DefaultIdempotencyTTL, now: time.Now}
}

func (s *AdoptionService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *AdoptionService) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn, repo.TxOptions(s.DB))
}

func tracer() trace.Tracer { return otel.Tracer("services/AdoptionService") }

// CreateRequest files a pending request by the session's client for
// animalID. A missing or non-available animal yields ErrAnimalUnavailable and
// nothing is written. The animal stays available while the request is
// pending.
func (s *AdoptionService) CreateRequest(ctx context.Context, sess Session, animalID uint) (*domain.AdoptionRequest, error) {
	ctx, span := tracer().Start(ctx, "CreateRequest",
		trace.WithAttributes(
			attribute.Int("animal.id", int(animalID)),
			attribute.Int("user.id", int(sess.UserID)),
		),
	)
	defer span.End()

	if !sess.IsClient() {
		return nil, ErrForbidden
	}

	var out *domain.AdoptionRequest
	err := s.tx(ctx, func(tx *gorm.DB) error {
		r, err := s.create(ctx, tx, sess, animalID)
		out = r
		return err
	})
	s.countCreate(err, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AdoptionService) create(ctx context.Context, tx *gorm.DB, sess Session, animalID uint) (*domain.AdoptionRequest, error) {
	a, err := repo.GetAnimal(ctx, tx, animalID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrAnimalUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !a.Available() {
		return nil, ErrAnimalUnavailable
	}
	return repo.CreateRequest(ctx, tx, animalID, sess.UserID, s.clock())
}

// CreateRequestIdempotent behaves like CreateRequest, except that a repeated
// call with the same non-blank key (per client, within IdempotencyTTL)
// returns the request created by the first call. replayed reports whether
// that happened.
func (s *AdoptionService) CreateRequestIdempotent(ctx context.Context, sess Session, animalID uint, key string) (req *domain.AdoptionRequest, replayed bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" {
		req, err = s.CreateRequest(ctx, sess, animalID)
		return req, false, err
	}

	ctx, span := tracer().Start(ctx, "CreateRequestIdempotent",
		trace.WithAttributes(
			attribute.Int("animal.id", int(animalID)),
			attribute.Int("user.id", int(sess.UserID)),
		),
	)
	defer span.End()

	if !sess.IsClient() {
		return nil, false, ErrForbidden
	}
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	err = s.tx(ctx, func(tx *gorm.DB) error {
		rec, err := repo.GetIdempotency(ctx, tx, sess.UserID, key, time.Now().UTC())
		if err == nil {
			req, err = repo.GetRequest(ctx, tx, rec.RequestID)
			replayed = true
			return err
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if req, err = s.create(ctx, tx, sess, animalID); err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, sess.UserID, key, req.ID, ttl)
		return err
	})

	// A concurrent call with the same key committed first: its insert is
	// rolled back here and the winner's request is returned.
	if errors.Is(err, repo.ErrDuplicate) {
		rec, gerr := repo.GetIdempotency(ctx, s.DB, sess.UserID, key, time.Now().UTC())
		if gerr == nil {
			req, err = repo.GetRequest(ctx, s.DB, rec.RequestID)
			replayed = err == nil
		}
	}
	s.countCreate(err, replayed)
	if err != nil {
		return nil, false, err
	}
	return req, replayed, nil
}

func (s *AdoptionService) countCreate(err error, replayed bool) {
	switch {
	case err == nil && replayed:
		adoptionCreates.WithLabelValues("replayed").Inc()
	case err == nil:
		adoptionCreates.WithLabelValues("created").Inc()
	case errors.Is(err, ErrAnimalUnavailable):
		adoptionCreates.WithLabelValues("unavailable").Inc()
	default:
		adoptionCreates.WithLabelValues("error").Inc()
	}
}

// ApproveRequest approves request id and marks its animal adopted.
//
// In parity mode the request is overwritten whatever its prior status and
// the animal is set to adopted unconditionally. In strict mode the request
// must be pending (ErrRequestNotPending) and the animal still available
// (ErrAnimalUnavailable); on either failure nothing is committed. A missing
// request yields ErrRequestNotFound in both modes.
func (s *AdoptionService) ApproveRequest(ctx context.Context, id uint) error {
	ctx, span := tracer().Start(ctx, "ApproveRequest",
		trace.WithAttributes(
			attribute.Int("request.id", int(id)),
			attribute.Bool("strict", s.Strict),
		),
	)
	defer span.End()

	err := s.tx(ctx, func(tx *gorm.DB) error {
		r, err := repo.GetRequest(ctx, tx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRequestNotFound
		}
		if err != nil {
			return err
		}

		if !s.Strict {
			if err := repo.SetRequestStatus(ctx, tx, id, domain.RequestApproved); err != nil {
				return notFoundAs(err, ErrRequestNotFound)
			}
			return repo.UpdateAnimalStatus(ctx, tx, r.AnimalID, domain.AnimalAdopted, "")
		}

		if err := s.transitionPending(ctx, tx, id, domain.RequestApproved); err != nil {
			return err
		}
		ok, err := repo.SwapAnimalStatus(ctx, tx, r.AnimalID, domain.AnimalAvailable, domain.AnimalAdopted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAnimalUnavailable
		}
		return nil
	})
	if err == nil {
		adoptionTransitions.WithLabelValues(string(domain.RequestApproved)).Inc()
	}
	return err
}

// RejectRequest rejects request id. Parity mode overwrites any prior status;
// strict mode requires it to be pending.
func (s *AdoptionService) RejectRequest(ctx context.Context, id uint) error {
	ctx, span := tracer().Start(ctx, "RejectRequest",
		trace.WithAttributes(
			attribute.Int("request.id", int(id)),
			attribute.Bool("strict", s.Strict),
		),
	)
	defer span.End()

	err := s.tx(ctx, func(tx *gorm.DB) error {
		if !s.Strict {
			return notFoundAs(repo.SetRequestStatus(ctx, tx, id, domain.RequestRejected), ErrRequestNotFound)
		}
		return s.transitionPending(ctx, tx, id, domain.RequestRejected)
	})
	if err == nil {
		adoptionTransitions.WithLabelValues(string(domain.RequestRejected)).Inc()
	}
	return err
}

// transitionPending moves request id from pending to `to`, distinguishing a
// missing request from one that was already decided.
func (s *AdoptionService) transitionPending(ctx context.Context, tx *gorm.DB, id uint, to domain.RequestStatus) error {
	err := repo.TransitionRequest(ctx, tx, repo.Transition{ID: id, From: domain.RequestPending, To: to})
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if _, gerr := repo.GetRequest(ctx, tx, id); errors.Is(gerr, repo.ErrNotFound) {
		return ErrRequestNotFound
	} else if gerr != nil {
		return gerr
	}
	return ErrRequestNotPending
}

// CancelRequest cancels request id on behalf of the session's client. It
// succeeds only if the request exists, belongs to the client, and is still
// pending; otherwise ErrRequestNotCancellable.
func (s *AdoptionService) CancelRequest(ctx context.Context, sess Session, id uint) error {
	ctx, span := tracer().Start(ctx, "CancelRequest",
		trace.WithAttributes(
			attribute.Int("request.id", int(id)),
			attribute.Int("user.id", int(sess.UserID)),
		),
	)
	defer span.End()

	if !sess.IsClient() {
		return ErrForbidden
	}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		return repo.TransitionRequest(ctx, tx, repo.Transition{
			ID:       id,
			From:     domain.RequestPending,
			To:       domain.RequestCancelled,
			ClientID: sess.UserID,
		})
	})
	if errors.Is(err, repo.ErrNotFound) {
		return ErrRequestNotCancellable
	}
	if err == nil {
		adoptionTransitions.WithLabelValues(string(domain.RequestCancelled)).Inc()
	}
	return err
}

// ListAll returns every request joined with client and animal details,
// newest first.
func (s *AdoptionService) ListAll(ctx context.Context) ([]domain.RequestView, error) {
	return repo.ListRequestViews(ctx, s.DB)
}

// ListByClient returns the session client's requests, newest first, without
// cancelled ones.
func (s *AdoptionService) ListByClient(ctx context.Context, sess Session) ([]domain.RequestView, error) {
	if !sess.IsClient() {
		return nil, ErrForbidden
	}
	return repo.ListClientRequestViews(ctx, s.DB, sess.UserID)
}

// Stats returns the number of requests and the latest modification time.
func (s *AdoptionService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.RequestsStats(ctx, s.DB)
}

func notFoundAs(err, target error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return target
	}
	return err
}

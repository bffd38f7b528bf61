package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-shelter-backend/internal/domain"
)

func TestCreateAndGetRequest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "Tom", domain.AnimalAvailable)
	c := seedUser(t, db, "client1", domain.RoleClient)

	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	r, err := CreateRequest(ctx, db, a.ID, c.ID, at)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if r.ID == 0 || r.Status != domain.RequestPending {
		t.Fatalf("unexpected request: %+v", r)
	}

	got, err := GetRequest(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.AnimalID != a.ID || got.ClientID != c.ID || !got.RequestDate.Equal(at) {
		t.Fatalf("unexpected stored request: %+v", got)
	}

	if _, err := GetRequest(ctx, db, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRequest_ForeignKeyViolation(t *testing.T) {
	db := newTestDB(t)
	if _, err := CreateRequest(context.Background(), db, 77, 88, time.Now()); err == nil {
		t.Fatalf("expected FK error for unknown animal/client")
	}
}

func TestSetRequestStatus_OverwritesAnyState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "Tom", domain.AnimalAvailable)
	c := seedUser(t, db, "client1", domain.RoleClient)
	r, _ := CreateRequest(ctx, db, a.ID, c.ID, time.Now())

	if err := SetRequestStatus(ctx, db, r.ID, domain.RequestRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := SetRequestStatus(ctx, db, r.ID, domain.RequestApproved); err != nil {
		t.Fatalf("approve after reject: %v", err)
	}
	got, _ := GetRequest(ctx, db, r.ID)
	if got.Status != domain.RequestApproved {
		t.Fatalf("status = %q; want approved", got.Status)
	}
	if err := SetRequestStatus(ctx, db, 999, domain.RequestApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransitionRequest_Guards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "Tom", domain.AnimalAvailable)
	owner := seedUser(t, db, "owner", domain.RoleClient)
	other := seedUser(t, db, "other", domain.RoleClient)
	r, _ := CreateRequest(ctx, db, a.ID, owner.ID, time.Now())

	cancel := Transition{ID: r.ID, From: domain.RequestPending, To: domain.RequestCancelled}

	wrongOwner := cancel
	wrongOwner.ClientID = other.ID
	if err := TransitionRequest(ctx, db, wrongOwner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign client must not transition: %v", err)
	}

	mine := cancel
	mine.ClientID = owner.ID
	if err := TransitionRequest(ctx, db, mine); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if err := TransitionRequest(ctx, db, mine); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second cancel must fail: %v", err)
	}
}

func TestListRequestViews_JoinAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tom := seedAnimal(t, db, "Tom", domain.AnimalAvailable)
	rex := seedAnimal(t, db, "Rex", domain.AnimalAvailable)
	c1 := seedUser(t, db, "c1", domain.RoleClient)
	c2 := seedUser(t, db, "c2", domain.RoleClient)

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	old, _ := CreateRequest(ctx, db, tom.ID, c1.ID, base)
	mid, _ := CreateRequest(ctx, db, rex.ID, c2.ID, base.Add(time.Hour))
	newest, _ := CreateRequest(ctx, db, rex.ID, c1.ID, base.Add(2*time.Hour))
	if err := SetRequestStatus(ctx, db, newest.ID, domain.RequestCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	all, err := ListRequestViews(ctx, db)
	if err != nil {
		t.Fatalf("ListRequestViews: %v", err)
	}
	if len(all) != 3 || all[0].ID != newest.ID || all[1].ID != mid.ID || all[2].ID != old.ID {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[1].ClientName != "C2" || all[1].ClientPhone != "+100c2" || all[1].AnimalName != "Rex" {
		t.Fatalf("join columns not populated: %+v", all[1])
	}
	if !all[2].RequestDate.Equal(base) {
		t.Fatalf("request_date = %v; want %v", all[2].RequestDate, base)
	}

	mine, err := ListClientRequestViews(ctx, db, c1.ID)
	if err != nil {
		t.Fatalf("ListClientRequestViews: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != old.ID || mine[0].AnimalName != "Tom" {
		t.Fatalf("cancelled requests must be excluded: %+v", mine)
	}
}

func TestListRequestViews_SameTimestampTieBreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedAnimal(t, db, "Tom", domain.AnimalAvailable)
	c := seedUser(t, db, "c", domain.RoleClient)

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	first, _ := CreateRequest(ctx, db, a.ID, c.ID, at)
	second, _ := CreateRequest(ctx, db, a.ID, c.ID, at)

	all, err := ListRequestViews(ctx, db)
	if err != nil {
		t.Fatalf("ListRequestViews: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected id DESC tie-break, got %+v", all)
	}
}

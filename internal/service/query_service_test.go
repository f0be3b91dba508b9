package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/helpr-dev/helpr/internal/domain"
	apperrors "github.com/helpr-dev/helpr/pkg/util/errorutil"
)

func newQueries(store *memStore) *QueryService {
	return NewQueryService(QueryDependencies{
		TicketRepo: &memTicketRepo{s: store},
		UserRepo:   &memUserRepo{s: store},
	})
}

func TestListActiveTickets_OnlyOpenOnes(t *testing.T) {
	store := newMemStore()
	author := newAuthor(store)
	authorB := store.addUser(&domain.User{Email: "b@example.com"})
	mentor := newMentor(store, "mentor@example.com")
	engine := newEngine(store)

	open := openTicket(t, store, engine, author)
	claimed := openTicket(t, store, engine, authorB)
	if _, err := engine.ClaimTicket(context.Background(), claimed.ID, mentor); err != nil {
		t.Fatalf("claim: %v", err)
	}

	queries := newQueries(store)
	tickets, err := queries.ListActiveTickets(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 active ticket, got %d", len(tickets))
	}
	if tickets[0].ID != open.ID {
		t.Errorf("expected the open ticket, got %s", tickets[0].ID)
	}
}

func TestListAuthoredTickets(t *testing.T) {
	store := newMemStore()
	author := newAuthor(store)
	other := store.addUser(&domain.User{Email: "other@example.com"})
	engine := newEngine(store)

	mine := resolvedTicket(t, store, engine, author)
	openTicket(t, store, engine, other)

	queries := newQueries(store)
	tickets, err := queries.ListAuthoredTickets(context.Background(), author, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != mine.ID {
		t.Errorf("expected only the author's ticket, got %d tickets", len(tickets))
	}
}

func TestGetTicket_Visibility(t *testing.T) {
	store := newMemStore()
	author := newAuthor(store)
	mentor := newMentor(store, "mentor@example.com")
	admin := newAdmin(store)
	stranger := store.addUser(&domain.User{Email: "stranger@example.com"})
	engine := newEngine(store)
	ticket := openTicket(t, store, engine, author)

	queries := newQueries(store)

	for name, viewer := range map[string]*domain.User{
		"author": author,
		"mentor": mentor,
		"admin":  admin,
	} {
		if _, err := queries.GetTicket(context.Background(), viewer, ticket.ID); err != nil {
			t.Errorf("%s must see the ticket: %v", name, err)
		}
	}

	_, err := queries.GetTicket(context.Background(), stranger, ticket.ID)
	if err == nil {
		t.Fatal("stranger must not see the ticket")
	}
	if code := apperrors.ToDomainError(err).Code; code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %s", code)
	}
}

func TestGetTicket_NotFound(t *testing.T) {
	store := newMemStore()
	admin := newAdmin(store)
	queries := newQueries(store)

	_, err := queries.GetTicket(context.Background(), admin, uuid.NewString())
	if err == nil {
		t.Fatal("expected NOT_FOUND")
	}
	if code := apperrors.ToDomainError(err).Code; code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}

func TestListUsers_AdminOnly(t *testing.T) {
	store := newMemStore()
	admin := newAdmin(store)
	plain := newAuthor(store)
	queries := newQueries(store)

	users, err := queries.ListUsers(context.Background(), admin, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	_, err = queries.ListUsers(context.Background(), plain, 50, 0)
	if err == nil {
		t.Fatal("non-admin must be refused")
	}
	if code := apperrors.ToDomainError(err).Code; code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %s", code)
	}
}

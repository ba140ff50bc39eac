// Package ticket persists helpdesk tickets as JSON documents.
package ticket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studentmate/tutor/internal/domain"
)

type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores tickets under <prefix>ticket:<id>.
type Repo struct {
	store  store
	prefix string
}

// New creates a ticket repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Save persists a ticket.
func (r *Repo) Save(ctx context.Context, t domain.Ticket) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}
	if err := r.store.JSONSet(ctx, r.key(t.ID), "$", data); err != nil {
		return fmt.Errorf("store ticket %s: %w", t.ID, err)
	}
	return nil
}

// ListByOwner returns all tickets filed by the owner.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"ticket:*")
	if err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}

	var tickets []domain.Ticket
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			continue
		}
		t, err := unmarshalTicket(raw)
		if err != nil {
			continue
		}
		if t.OwnerID == ownerID {
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}

// DeleteByIssue removes every ticket whose issue text matches exactly.
// Returns the number of tickets removed.
func (r *Repo) DeleteByIssue(ctx context.Context, issue string) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"ticket:*")
	if err != nil {
		return 0, fmt.Errorf("scan tickets: %w", err)
	}

	removed := 0
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			continue
		}
		t, err := unmarshalTicket(raw)
		if err != nil {
			continue
		}
		if t.Issue == issue {
			if err := r.store.Del(ctx, key); err != nil {
				return removed, fmt.Errorf("delete ticket %s: %w", key, err)
			}
			removed++
		}
	}
	return removed, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "ticket:" + id
}

func unmarshalTicket(raw []byte) (domain.Ticket, error) {
	var list []domain.Ticket
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}
	var t domain.Ticket
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.Ticket{}, fmt.Errorf("unmarshal ticket: %w", err)
	}
	return t, nil
}

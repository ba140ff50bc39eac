// Package helpdesk manages student support tickets.
package helpdesk

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/logger"
)

// Resolution ETA granted to every new ticket.
const resolutionWindow = 7 * 24 * time.Hour

// seedTicketIssue marks tickets created by environment seeding; leftover
// copies are removed at startup.
const seedTicketIssue = "Sample ticket created during setup"

// Repository defines the storage contract for tickets.
type Repository interface {
	Save(ctx context.Context, t domain.Ticket) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	DeleteByIssue(ctx context.Context, issue string) (int, error)
}

// Service creates and lists help desk tickets.
type Service struct {
	repo Repository
}

// New creates a helpdesk service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create opens a new ticket with a seven-day resolution ETA.
func (s *Service) Create(ctx context.Context, ownerID, issue string) (domain.Ticket, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.Ticket{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if strings.TrimSpace(issue) == "" {
		return domain.Ticket{}, fmt.Errorf("%w: issue description is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:        newTicketID(),
		OwnerID:   ownerID,
		Issue:     issue,
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
		ETA:       now.Add(resolutionWindow),
	}

	if err := s.repo.Save(ctx, ticket); err != nil {
		return domain.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// List returns the owner's tickets.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// CleanupSeedTickets removes leftover seed tickets. Best-effort: a
// failure is logged, never fatal for startup.
func (s *Service) CleanupSeedTickets(ctx context.Context) {
	log := logger.FromContext(ctx)

	removed, err := s.repo.DeleteByIssue(ctx, seedTicketIssue)
	if err != nil {
		log.Warn("seed ticket cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		log.Info("removed seed tickets", zap.Int("count", removed))
	}
}

func newTicketID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

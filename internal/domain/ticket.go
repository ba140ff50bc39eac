package domain

import "time"

// Ticket statuses.
const (
	TicketStatusOpen       = "OPEN"
	TicketStatusInProgress = "IN_PROGRESS"
	TicketStatusResolved   = "RESOLVED"
	TicketStatusClosed     = "CLOSED"
)

// Ticket is a help desk support ticket.
type Ticket struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"username"`
	Issue     string    `json:"issue"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	ETA       time.Time `json:"eta"`
}

package model

import "time"

// TransactionStatus is the lifecycle state shown in the transactions table
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "Completed"
	StatusPending   TransactionStatus = "Pending"
	StatusCancelled TransactionStatus = "Cancelled"
)

// Transaction is one row of the recent activity table
type Transaction struct {
	ID          string            `json:"id"`
	Customer    string            `json:"customer"`
	Email       string            `json:"email,omitempty"`
	AmountCents int64             `json:"amount_cents"`
	Status      TransactionStatus `json:"status"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// Amount returns the amount in currency units
func (t Transaction) Amount() float64 {
	return float64(t.AmountCents) / 100
}

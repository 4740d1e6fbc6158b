package duckdb

import (
	"context"
	"fmt"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// TransactionRepo handles transaction persistence and implements data.TransactionSource
type TransactionRepo struct {
	client *Client
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(client *Client) *TransactionRepo {
	return &TransactionRepo{client: client}
}

var _ data.TransactionSource = (*TransactionRepo)(nil)

// InsertBatch upserts multiple transactions in a transaction
func (r *TransactionRepo) InsertBatch(ctx context.Context, txs []model.Transaction) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (id, customer, email, amount_cents, status, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			customer = EXCLUDED.customer,
			email = EXCLUDED.email,
			amount_cents = EXCLUDED.amount_cents,
			status = EXCLUDED.status,
			occurred_at = EXCLUDED.occurred_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.ID, t.Customer, t.Email, t.AmountCents, string(t.Status), t.OccurredAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

// FetchTransactions returns the latest transactions, newest first
func (r *TransactionRepo) FetchTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	query := `
		SELECT id, customer, email, amount_cents, status, occurred_at
		FROM transactions
		ORDER BY occurred_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs := []model.Transaction{}
	for rows.Next() {
		var (
			t      model.Transaction
			email  interface{}
			status string
		)
		if err := rows.Scan(&t.ID, &t.Customer, &email, &t.AmountCents, &status, &t.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if e, ok := email.(string); ok {
			t.Email = e
		}
		t.Status = model.TransactionStatus(status)
		t.OccurredAt = t.OccurredAt.UTC()
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

// Count returns the total number of transactions
func (r *TransactionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
	return count, err
}

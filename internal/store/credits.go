// File path: internal/store/credits.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Balance returns a user's current credit balance, zero when no row exists.
func (s *Store) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.db.GetContext(ctx,
		&balance, `SELECT balance FROM credit_balances WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return balance, nil
}

// Ledger returns a user's credit ledger entries, newest first.
func (s *Store) Ledger(ctx context.Context, userID string) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT * FROM credit_ledger WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	return entries, nil
}

// GrantCredits adds credits to a user's balance alongside a ledger entry.
func (s *Store) GrantCredits(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return errors.New("grant amount must be positive")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grant: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_balances (user_id, balance) VALUES (?, ?)
                 ON CONFLICT(user_id) DO UPDATE SET
                        balance = balance + excluded.balance,
                        updated_at = CURRENT_TIMESTAMP`,
		userID, amount); err != nil {
		return fmt.Errorf("apply grant: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_ledger (id, user_id, delta, reason) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, amount, reason); err != nil {
		return fmt.Errorf("record grant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grant: %w", err)
	}
	return nil
}

// DeductCredits removes credits with a single conditional update, so a
// concurrent deduction can never drive the balance negative. Returns
// ErrInsufficientCredits when the guard rejects the decrement.
func (s *Store) DeductCredits(ctx context.Context, userID string, amount int, reason string) error {
	if amount <= 0 {
		return errors.New("deduction amount must be positive")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deduction: %w", err)
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx,
		`UPDATE credit_balances
                 SET balance = balance - ?, updated_at = CURRENT_TIMESTAMP
                 WHERE user_id = ? AND balance >= ?`,
		amount, userID, amount)
	if err != nil {
		return fmt.Errorf("apply deduction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduction rows: %w", err)
	}
	if affected == 0 {
		return ErrInsufficientCredits
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_ledger (id, user_id, delta, reason) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, -amount, reason); err != nil {
		return fmt.Errorf("record deduction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deduction: %w", err)
	}
	return nil
}

// ApplyCheckoutEvent credits a user for a completed checkout. Crediting is
// idempotent on the event id: a replayed event reports credited=false and
// leaves the balance untouched.
func (s *Store) ApplyCheckoutEvent(ctx context.Context, eventID, userID string, credits int) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, errors.New("event id required")
	}
	if credits <= 0 {
		return false, errors.New("credits must be positive")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin checkout event: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists,
		`SELECT COUNT(1) FROM webhook_events WHERE event_id = ?`, eventID)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	if exists > 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO webhook_events (event_id, user_id, credits) VALUES (?, ?, ?)`,
		eventID, userID, credits); err != nil {
		return false, fmt.Errorf("record event: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_balances (user_id, balance) VALUES (?, ?)
                 ON CONFLICT(user_id) DO UPDATE SET
                        balance = balance + excluded.balance,
                        updated_at = CURRENT_TIMESTAMP`,
		userID, credits); err != nil {
		return false, fmt.Errorf("apply checkout credits: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credit_ledger (id, user_id, delta, reason, event_id) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, credits, "checkout", eventID); err != nil {
		return false, fmt.Errorf("record checkout: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit checkout event: %w", err)
	}
	return true, nil
}

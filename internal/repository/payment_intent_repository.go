package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// PaymentIntentRepo records payment intents created at the provider so
// confirmations can be verified against contract, purpose and amount.
// Rows are append-only; the provider reference is unique.
type PaymentIntentRepo struct {
	db *sql.DB
}

// NewPaymentIntentRepo returns a PaymentIntentRepo bound to the given
// database.
func NewPaymentIntentRepo(db *sql.DB) *PaymentIntentRepo { return &PaymentIntentRepo{db: db} }

// Create inserts an intent record.
func (r *PaymentIntentRepo) Create(ctx context.Context, pi *model.PaymentIntent) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_intents (contract_id, purpose, amount_cents, currency, provider_ref)
		 VALUES (?,?,?,?,?)`,
		pi.ContractID, string(pi.Purpose), pi.AmountCents, pi.Currency, pi.ProviderRef)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	pi.ID = uint64(id)
	return nil
}

// GetByProviderRef loads an intent by the provider's reference.
func (r *PaymentIntentRepo) GetByProviderRef(ctx context.Context, ref string) (*model.PaymentIntent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, contract_id, purpose, amount_cents, currency, provider_ref, created_at
		 FROM payment_intents WHERE provider_ref = ? LIMIT 1`, ref)
	var (
		pi      model.PaymentIntent
		purpose string
	)
	err := row.Scan(&pi.ID, &pi.ContractID, &purpose, &pi.AmountCents, &pi.Currency, &pi.ProviderRef, &pi.CreatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	pi.Purpose = model.PaymentPurpose(purpose)
	return &pi, nil
}

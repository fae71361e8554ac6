package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// ContractRepo provides persistence for the contracts table. Status
// changes are only ever written through the conditional methods below;
// there is no unconditional status setter on purpose.
type ContractRepo struct {
	db *sql.DB
}

// NewContractRepo returns a ContractRepo bound to the given database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

// DB exposes the underlying handle for transaction management by
// callers that need multi-repo atomicity.
func (r *ContractRepo) DB() *sql.DB { return r.db }

const contractColumns = `id, property_id, tenant_id, landlord_id, application_id,
       start_date, end_date, monthly_rent_cents, deposit_cents, currency,
       terms, special_conditions, status,
       tenant_sig_ref, tenant_signed_at, landlord_sig_ref, landlord_signed_at,
       deposit_paid, deposit_payment_ref, rent_paid, rent_payment_ref,
       keys_collected, checklist_id, checklist_deadline, terminated_at,
       created_at, updated_at`

// Create inserts a draft contract and populates the generated ID and
// timestamps on the provided record.
func (r *ContractRepo) Create(ctx context.Context, c *model.Contract) error {
	const q = `INSERT INTO contracts
	           (property_id, tenant_id, landlord_id, application_id,
	            start_date, end_date, monthly_rent_cents, deposit_cents, currency,
	            terms, special_conditions, status)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		c.PropertyID, c.TenantID, c.LandlordID, c.ApplicationID,
		c.StartDate, c.EndDate, c.MonthlyRentCents, c.DepositCents, c.Currency,
		c.Terms, c.SpecialConditions, string(c.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	got, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID loads a single contract.
func (r *ContractRepo) GetByID(ctx context.Context, id uint64) (*model.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
	c, err := scanContract(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return c, nil
}

// ListByTenant returns the tenant's contracts, newest first.
func (r *ContractRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Contract, error) {
	return r.list(ctx, `tenant_id`, tenantID)
}

// ListByLandlord returns the landlord's contracts, newest first.
func (r *ContractRepo) ListByLandlord(ctx context.Context, landlordID uint64) ([]model.Contract, error) {
	return r.list(ctx, `landlord_id`, landlordID)
}

func (r *ContractRepo) list(ctx context.Context, column string, userID uint64) ([]model.Contract, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE `+column+` = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ApplyTransition moves status from → to as a compare-and-swap.
func (r *ContractRepo) ApplyTransition(ctx context.Context, id uint64, from, to model.ContractStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET status = ? WHERE id = ? AND status = ?`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// SetSignature stores the signature and performs the matching status
// transition in one statement. The signature column must still be NULL.
func (r *ContractRepo) SetSignature(ctx context.Context, id uint64, tenant bool, sig model.Signature, from, to model.ContractStatus) error {
	col := "landlord"
	if tenant {
		col = "tenant"
	}
	q := `UPDATE contracts
	      SET status = ?, ` + col + `_sig_ref = ?, ` + col + `_signed_at = ?
	      WHERE id = ? AND status = ? AND ` + col + `_sig_ref IS NULL`
	res, err := r.db.ExecContext(ctx, q, string(to), sig.BlobRef, sig.SignedAt, id, string(from))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// MarkDepositPaid flips the deposit flag exactly once.
func (r *ContractRepo) MarkDepositPaid(ctx context.Context, id uint64, providerRef string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET deposit_paid = 1, deposit_payment_ref = ? WHERE id = ? AND deposit_paid = 0`,
		providerRef, id)
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// MarkRentPaid flips the first-month-rent flag exactly once.
func (r *ContractRepo) MarkRentPaid(ctx context.Context, id uint64, providerRef string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET rent_paid = 1, rent_payment_ref = ? WHERE id = ? AND rent_paid = 0`,
		providerRef, id)
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// SetKeysCollected marks the handover done. Idempotent.
func (r *ContractRepo) SetKeysCollected(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET keys_collected = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// keys_collected may already be 1, which still matches the row
		return r.existsOr(ctx, id)
	}
	return nil
}

// SetChecklist links the checklist and its advisory deadline, once.
func (r *ContractRepo) SetChecklist(ctx context.Context, id uint64, checklistID uint64, deadline time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET checklist_id = ?, checklist_deadline = ? WHERE id = ? AND checklist_id IS NULL`,
		checklistID, deadline, id)
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// SetTerminated transitions to TERMINATED and records the effective end
// date, conditioned on the observed status.
func (r *ContractRepo) SetTerminated(ctx context.Context, id uint64, from model.ContractStatus, effective time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contracts SET status = ?, terminated_at = ? WHERE id = ? AND status = ?`,
		string(model.StatusTerminated), effective, id, string(from))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// Delete removes the contract while it is still in one of the allowed
// pre-active states.
func (r *ContractRepo) Delete(ctx context.Context, id uint64, allowed ...model.ContractStatus) error {
	if len(allowed) == 0 {
		return lifecycle.ErrInvalidTransition
	}
	placeholders := strings.Repeat("?,", len(allowed))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, 0, len(allowed)+1)
	args = append(args, id)
	for _, s := range allowed {
		args = append(args, string(s))
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contracts WHERE id = ? AND status IN (`+placeholders+`)`, args...)
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// ListActivatable returns FULLY_SIGNED contracts whose start date has
// been reached.
func (r *ContractRepo) ListActivatable(ctx context.Context, now time.Time) ([]uint64, error) {
	return r.listIDs(ctx,
		`SELECT id FROM contracts WHERE status = ? AND start_date <= ?`,
		string(model.StatusFullySigned), now)
}

// ListExpirable returns ACTIVE contracts whose end date has passed.
func (r *ContractRepo) ListExpirable(ctx context.Context, now time.Time) ([]uint64, error) {
	return r.listIDs(ctx,
		`SELECT id FROM contracts WHERE status = ? AND end_date < ?`,
		string(model.StatusActive), now)
}

func (r *ContractRepo) listIDs(ctx context.Context, q string, args ...interface{}) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// checkWrite resolves a conditional write that touched zero rows.
func (r *ContractRepo) checkWrite(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return resolveMiss(ctx, r.db, `SELECT 1 FROM contracts WHERE id = ?`, id)
}

func (r *ContractRepo) existsOr(ctx context.Context, id uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM contracts WHERE id = ?`, id).Scan(&one)
	return mapNoRows(err)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanContract(s scanner) (*model.Contract, error) {
	var (
		c                 model.Contract
		specialConditions sql.NullString
		tenantSigRef      sql.NullString
		tenantSignedAt    sql.NullTime
		landlordSigRef    sql.NullString
		landlordSignedAt  sql.NullTime
		depositRef        sql.NullString
		rentRef           sql.NullString
		checklistID       sql.NullInt64
		checklistDeadline sql.NullTime
		terminatedAt      sql.NullTime
		status            string
	)
	err := s.Scan(
		&c.ID, &c.PropertyID, &c.TenantID, &c.LandlordID, &c.ApplicationID,
		&c.StartDate, &c.EndDate, &c.MonthlyRentCents, &c.DepositCents, &c.Currency,
		&c.Terms, &specialConditions, &status,
		&tenantSigRef, &tenantSignedAt, &landlordSigRef, &landlordSignedAt,
		&c.DepositPaid, &depositRef, &c.RentPaid, &rentRef,
		&c.KeysCollected, &checklistID, &checklistDeadline, &terminatedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = model.ContractStatus(status)
	if specialConditions.Valid {
		c.SpecialConditions = specialConditions.String
	}
	if tenantSigRef.Valid && tenantSignedAt.Valid {
		c.TenantSignature = &model.Signature{BlobRef: tenantSigRef.String, SignedAt: tenantSignedAt.Time.UTC()}
	}
	if landlordSigRef.Valid && landlordSignedAt.Valid {
		c.LandlordSignature = &model.Signature{BlobRef: landlordSigRef.String, SignedAt: landlordSignedAt.Time.UTC()}
	}
	if depositRef.Valid {
		ref := depositRef.String
		c.DepositPaymentRef = &ref
	}
	if rentRef.Valid {
		ref := rentRef.String
		c.RentPaymentRef = &ref
	}
	if checklistID.Valid {
		id := uint64(checklistID.Int64)
		c.ChecklistID = &id
	}
	if checklistDeadline.Valid {
		t := checklistDeadline.Time.UTC()
		c.ChecklistDeadline = &t
	}
	if terminatedAt.Valid {
		t := terminatedAt.Time.UTC()
		c.TerminatedAt = &t
	}
	return &c, nil
}

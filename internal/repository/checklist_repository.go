package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// ChecklistRepo persists move-in checklists. The room/item structure is
// stored as JSON; signatures and status get their own columns so the
// freeze conditions can be expressed in the WHERE clause of each write.
type ChecklistRepo struct {
	db *sql.DB
}

// NewChecklistRepo returns a ChecklistRepo bound to the given database.
func NewChecklistRepo(db *sql.DB) *ChecklistRepo { return &ChecklistRepo{db: db} }

const checklistColumns = `id, contract_id, rooms, status,
       tenant_sig_ref, tenant_signed_at, landlord_sig_ref, landlord_signed_at,
       created_at, updated_at`

// Create inserts a draft checklist and populates the generated ID.
func (r *ChecklistRepo) Create(ctx context.Context, cl *model.MoveInChecklist) error {
	rooms, err := json.Marshal(cl.Rooms)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO checklists (contract_id, rooms, status) VALUES (?,?,?)`,
		cl.ContractID, rooms, string(cl.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cl.ID = uint64(id)
	got, err := r.GetByID(ctx, cl.ID)
	if err != nil {
		return err
	}
	*cl = *got
	return nil
}

// GetByID loads a checklist by primary key.
func (r *ChecklistRepo) GetByID(ctx context.Context, id uint64) (*model.MoveInChecklist, error) {
	return r.get(ctx, `id`, id)
}

// GetByContract loads the checklist belonging to a contract.
func (r *ChecklistRepo) GetByContract(ctx context.Context, contractID uint64) (*model.MoveInChecklist, error) {
	return r.get(ctx, `contract_id`, contractID)
}

func (r *ChecklistRepo) get(ctx context.Context, column string, id uint64) (*model.MoveInChecklist, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+checklistColumns+` FROM checklists WHERE `+column+` = ? LIMIT 1`, id)
	var (
		cl               model.MoveInChecklist
		rooms            []byte
		status           string
		tenantSigRef     sql.NullString
		tenantSignedAt   sql.NullTime
		landlordSigRef   sql.NullString
		landlordSignedAt sql.NullTime
	)
	err := row.Scan(&cl.ID, &cl.ContractID, &rooms, &status,
		&tenantSigRef, &tenantSignedAt, &landlordSigRef, &landlordSignedAt,
		&cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := json.Unmarshal(rooms, &cl.Rooms); err != nil {
		return nil, err
	}
	cl.Status = model.ChecklistStatus(status)
	if tenantSigRef.Valid && tenantSignedAt.Valid {
		cl.TenantSignature = &model.Signature{BlobRef: tenantSigRef.String, SignedAt: tenantSignedAt.Time.UTC()}
	}
	if landlordSigRef.Valid && landlordSignedAt.Valid {
		cl.LandlordSignature = &model.Signature{BlobRef: landlordSigRef.String, SignedAt: landlordSignedAt.Time.UTC()}
	}
	return &cl, nil
}

// UpdateRooms replaces the room/item document while the checklist is
// still DRAFT.
func (r *ChecklistRepo) UpdateRooms(ctx context.Context, id uint64, rooms []model.ChecklistRoom) error {
	doc, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE checklists SET rooms = ? WHERE id = ? AND status = ?`,
		doc, id, string(model.ChecklistDraft))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// SetTenantSigned stores the tenant signature, DRAFT → TENANT_SIGNED.
func (r *ChecklistRepo) SetTenantSigned(ctx context.Context, id uint64, sig model.Signature) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checklists
		 SET status = ?, tenant_sig_ref = ?, tenant_signed_at = ?
		 WHERE id = ? AND status = ? AND tenant_sig_ref IS NULL`,
		string(model.ChecklistTenantSigned), sig.BlobRef, sig.SignedAt,
		id, string(model.ChecklistDraft))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// SetCompleted stores the landlord countersignature, TENANT_SIGNED →
// COMPLETED.
func (r *ChecklistRepo) SetCompleted(ctx context.Context, id uint64, sig model.Signature) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checklists
		 SET status = ?, landlord_sig_ref = ?, landlord_signed_at = ?
		 WHERE id = ? AND status = ? AND landlord_sig_ref IS NULL`,
		string(model.ChecklistCompleted), sig.BlobRef, sig.SignedAt,
		id, string(model.ChecklistTenantSigned))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

func (r *ChecklistRepo) checkWrite(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return resolveMiss(ctx, r.db, `SELECT 1 FROM checklists WHERE id = ?`, id)
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// ModificationRepo persists termination and amendment requests. The
// one-pending-per-type invariant is enforced by the INSERT itself, so
// two concurrent submissions cannot both slip past a prior check.
type ModificationRepo struct {
	db *sql.DB
}

// NewModificationRepo returns a ModificationRepo bound to the given
// database.
func NewModificationRepo(db *sql.DB) *ModificationRepo { return &ModificationRepo{db: db} }

const modificationColumns = `id, contract_id, requester_id, requester_role, type,
       reason, desired_end_date, changes, status, responded_by, responded_at, created_at`

// CreatePending inserts the request only when no PENDING request of the
// same type exists for the contract. Zero inserted rows means a
// duplicate.
func (r *ModificationRepo) CreatePending(ctx context.Context, req *model.ModificationRequest) error {
	const q = `INSERT INTO modification_requests
	           (contract_id, requester_id, requester_role, type, reason, desired_end_date, changes, status)
	           SELECT ?,?,?,?,?,?,?,? FROM DUAL
	           WHERE NOT EXISTS (
	               SELECT 1 FROM modification_requests
	               WHERE contract_id = ? AND type = ? AND status = ?
	           )`
	var desiredEnd interface{}
	if req.DesiredEndDate != nil {
		desiredEnd = *req.DesiredEndDate
	}
	res, err := r.db.ExecContext(ctx, q,
		req.ContractID, req.RequesterID, req.RequesterRole, string(req.Type),
		req.Reason, desiredEnd, req.Changes, string(model.ModificationPending),
		req.ContractID, string(req.Type), string(model.ModificationPending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return lifecycle.ErrDuplicatePending
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	got, err := r.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	*req = *got
	return nil
}

// GetByID loads one request.
func (r *ModificationRepo) GetByID(ctx context.Context, id uint64) (*model.ModificationRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+modificationColumns+` FROM modification_requests WHERE id = ?`, id)
	req, err := scanModification(row)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return req, nil
}

// ListByContract returns all requests for a contract, newest first.
func (r *ModificationRepo) ListByContract(ctx context.Context, contractID uint64) ([]model.ModificationRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+modificationColumns+` FROM modification_requests WHERE contract_id = ? ORDER BY created_at DESC, id DESC`,
		contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ModificationRequest, 0)
	for rows.Next() {
		req, err := scanModification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// Resolve moves PENDING → status exactly once. A resolved request never
// changes again.
func (r *ModificationRepo) Resolve(ctx context.Context, id uint64, status model.ModificationStatus, responderID uint64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE modification_requests
		 SET status = ?, responded_by = ?, responded_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), responderID, at, id, string(model.ModificationPending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return resolveMiss(ctx, r.db, `SELECT 1 FROM modification_requests WHERE id = ?`, id)
}

// Reopen reverts a resolution whose side effect could not be applied,
// putting the request back to PENDING so the counter-party can respond
// again.
func (r *ModificationRepo) Reopen(ctx context.Context, id uint64, from model.ModificationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE modification_requests
		 SET status = ?, responded_by = NULL, responded_at = NULL
		 WHERE id = ? AND status = ?`,
		string(model.ModificationPending), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return resolveMiss(ctx, r.db, `SELECT 1 FROM modification_requests WHERE id = ?`, id)
}

func scanModification(s scanner) (*model.ModificationRequest, error) {
	var (
		req         model.ModificationRequest
		reqType     string
		status      string
		desiredEnd  sql.NullTime
		changes     sql.NullString
		respondedBy sql.NullInt64
		respondedAt sql.NullTime
	)
	err := s.Scan(&req.ID, &req.ContractID, &req.RequesterID, &req.RequesterRole, &reqType,
		&req.Reason, &desiredEnd, &changes, &status, &respondedBy, &respondedAt, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	req.Type = model.ModificationType(reqType)
	req.Status = model.ModificationStatus(status)
	if desiredEnd.Valid {
		t := desiredEnd.Time.UTC()
		req.DesiredEndDate = &t
	}
	if changes.Valid {
		req.Changes = changes.String
	}
	if respondedBy.Valid {
		id := uint64(respondedBy.Int64)
		req.RespondedBy = &id
	}
	if respondedAt.Valid {
		t := respondedAt.Time.UTC()
		req.RespondedAt = &t
	}
	return &req, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/rental-lifecycle/internal/lifecycle"
	"github.com/iliyamo/rental-lifecycle/internal/model"
)

// KeyCollectionRepo persists key handover proposals. Slots are stored
// as a JSON document since they are always read and replaced as a
// whole. Superseded proposals are kept as an audit trail; only the
// latest non-superseded row is live.
type KeyCollectionRepo struct {
	db *sql.DB
}

// NewKeyCollectionRepo returns a KeyCollectionRepo bound to the given
// database.
func NewKeyCollectionRepo(db *sql.DB) *KeyCollectionRepo { return &KeyCollectionRepo{db: db} }

// Propose inserts a new PROPOSED record, marking any outstanding
// PROPOSED record for the same contract as SUPERSEDED in the same
// transaction. A CONFIRMED or COMPLETED handover cannot be replaced.
func (r *KeyCollectionRepo) Propose(ctx context.Context, kc *model.KeyCollection) error {
	slots, err := json.Marshal(kc.Slots)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var settled int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM key_collections WHERE contract_id = ? AND status IN (?,?)`,
		kc.ContractID, string(model.KeyCollectionConfirmed), string(model.KeyCollectionCompleted)).Scan(&settled)
	if err != nil {
		return err
	}
	if settled > 0 {
		return lifecycle.ErrConcurrentModification
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE key_collections SET status = ? WHERE contract_id = ? AND status = ?`,
		string(model.KeyCollectionSuperseded), kc.ContractID, string(model.KeyCollectionProposed)); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO key_collections (contract_id, proposed_by, slots, status) VALUES (?,?,?,?)`,
		kc.ContractID, kc.ProposedBy, slots, string(model.KeyCollectionProposed))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	kc.ID = uint64(id)
	got, err := r.GetLive(ctx, kc.ContractID)
	if err != nil {
		return err
	}
	*kc = *got
	return nil
}

// GetLive returns the latest non-superseded record for the contract.
func (r *KeyCollectionRepo) GetLive(ctx context.Context, contractID uint64) (*model.KeyCollection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, contract_id, proposed_by, slots, chosen_slot, status, created_at, updated_at
		 FROM key_collections
		 WHERE contract_id = ? AND status != ?
		 ORDER BY id DESC LIMIT 1`,
		contractID, string(model.KeyCollectionSuperseded))
	var (
		kc     model.KeyCollection
		slots  []byte
		chosen sql.NullInt64
		status string
	)
	err := row.Scan(&kc.ID, &kc.ContractID, &kc.ProposedBy, &slots, &chosen, &status, &kc.CreatedAt, &kc.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := json.Unmarshal(slots, &kc.Slots); err != nil {
		return nil, err
	}
	if chosen.Valid {
		n := int(chosen.Int64)
		kc.ChosenSlot = &n
	}
	kc.Status = model.KeyCollectionStatus(status)
	return &kc, nil
}

// Confirm records the chosen slot, PROPOSED → CONFIRMED.
func (r *KeyCollectionRepo) Confirm(ctx context.Context, id uint64, slot int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE key_collections SET status = ?, chosen_slot = ? WHERE id = ? AND status = ?`,
		string(model.KeyCollectionConfirmed), slot, id, string(model.KeyCollectionProposed))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

// Complete marks the handover done, CONFIRMED → COMPLETED.
func (r *KeyCollectionRepo) Complete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE key_collections SET status = ? WHERE id = ? AND status = ?`,
		string(model.KeyCollectionCompleted), id, string(model.KeyCollectionConfirmed))
	if err != nil {
		return err
	}
	return r.checkWrite(ctx, res, id)
}

func (r *KeyCollectionRepo) checkWrite(ctx context.Context, res sql.Result, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return resolveMiss(ctx, r.db, `SELECT 1 FROM key_collections WHERE id = ?`, id)
}

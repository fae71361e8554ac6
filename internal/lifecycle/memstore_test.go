package lifecycle

// In-memory store fakes used by the orchestrator tests. They reproduce
// the conditional-write semantics of the MySQL repositories: every
// state-dependent write checks the expected precondition under a lock
// and fails with ErrConcurrentModification when it no longer holds.

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/rental-lifecycle/internal/model"
	"github.com/iliyamo/rental-lifecycle/internal/payment"
	"github.com/iliyamo/rental-lifecycle/internal/queue"
)

type memDB struct {
	mu         sync.Mutex
	nextID     uint64
	contracts  map[uint64]*model.Contract
	keys       []*model.KeyCollection
	checklists map[uint64]*model.MoveInChecklist
	mods       map[uint64]*model.ModificationRequest
	intents    map[string]*model.PaymentIntent
	events     []queue.ContractEvent
}

func newMemDB() *memDB {
	return &memDB{
		contracts:  map[uint64]*model.Contract{},
		checklists: map[uint64]*model.MoveInChecklist{},
		mods:       map[uint64]*model.ModificationRequest{},
		intents:    map[string]*model.PaymentIntent{},
	}
}

func (db *memDB) id() uint64 {
	db.nextID++
	return db.nextID
}

// ----- ContractStore -----

type memContracts struct{ db *memDB }

func (s memContracts) Create(_ context.Context, c *model.Contract) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c.ID = s.db.id()
	cp := *c
	s.db.contracts[c.ID] = &cp
	return nil
}

func (s memContracts) GetByID(_ context.Context, id uint64) (*model.Contract, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s memContracts) list(match func(*model.Contract) bool) []model.Contract {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Contract
	for _, c := range s.db.contracts {
		if match(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s memContracts) ListByTenant(_ context.Context, tenantID uint64) ([]model.Contract, error) {
	return s.list(func(c *model.Contract) bool { return c.TenantID == tenantID }), nil
}

func (s memContracts) ListByLandlord(_ context.Context, landlordID uint64) ([]model.Contract, error) {
	return s.list(func(c *model.Contract) bool { return c.LandlordID == landlordID }), nil
}

func (s memContracts) mutate(id uint64, cond func(*model.Contract) bool, apply func(*model.Contract)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.contracts[id]
	if !ok {
		return ErrNotFound
	}
	if !cond(c) {
		return ErrConcurrentModification
	}
	apply(c)
	return nil
}

func (s memContracts) ApplyTransition(_ context.Context, id uint64, from, to model.ContractStatus) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return c.Status == from },
		func(c *model.Contract) { c.Status = to })
}

func (s memContracts) SetSignature(_ context.Context, id uint64, tenant bool, sig model.Signature, from, to model.ContractStatus) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return c.Status == from && !c.Signed(tenant) },
		func(c *model.Contract) {
			cp := sig
			if tenant {
				c.TenantSignature = &cp
			} else {
				c.LandlordSignature = &cp
			}
			c.Status = to
		})
}

func (s memContracts) MarkDepositPaid(_ context.Context, id uint64, providerRef string) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return !c.DepositPaid },
		func(c *model.Contract) { c.DepositPaid = true; c.DepositPaymentRef = &providerRef })
}

func (s memContracts) MarkRentPaid(_ context.Context, id uint64, providerRef string) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return !c.RentPaid },
		func(c *model.Contract) { c.RentPaid = true; c.RentPaymentRef = &providerRef })
}

func (s memContracts) SetKeysCollected(_ context.Context, id uint64) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return true },
		func(c *model.Contract) { c.KeysCollected = true })
}

func (s memContracts) SetChecklist(_ context.Context, id uint64, checklistID uint64, deadline time.Time) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return c.ChecklistID == nil },
		func(c *model.Contract) { c.ChecklistID = &checklistID; c.ChecklistDeadline = &deadline })
}

func (s memContracts) SetTerminated(_ context.Context, id uint64, from model.ContractStatus, effective time.Time) error {
	return s.mutate(id,
		func(c *model.Contract) bool { return c.Status == from },
		func(c *model.Contract) { c.Status = model.StatusTerminated; c.TerminatedAt = &effective })
}

func (s memContracts) Delete(_ context.Context, id uint64, allowed ...model.ContractStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.contracts[id]
	if !ok {
		return ErrNotFound
	}
	for _, st := range allowed {
		if c.Status == st {
			delete(s.db.contracts, id)
			return nil
		}
	}
	return ErrConcurrentModification
}

func (s memContracts) ListActivatable(_ context.Context, now time.Time) ([]uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []uint64
	for _, c := range s.db.contracts {
		if c.Status == model.StatusFullySigned && !now.Before(c.StartDate) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (s memContracts) ListExpirable(_ context.Context, now time.Time) ([]uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var ids []uint64
	for _, c := range s.db.contracts {
		if c.Status == model.StatusActive && now.After(c.EndDate) {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// ----- KeyCollectionStore -----

type memKeys struct{ db *memDB }

func (s memKeys) Propose(_ context.Context, kc *model.KeyCollection) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.keys {
		if existing.ContractID != kc.ContractID {
			continue
		}
		switch existing.Status {
		case model.KeyCollectionConfirmed, model.KeyCollectionCompleted:
			return ErrConcurrentModification
		case model.KeyCollectionProposed:
			existing.Status = model.KeyCollectionSuperseded
		}
	}
	kc.ID = s.db.id()
	cp := *kc
	s.db.keys = append(s.db.keys, &cp)
	return nil
}

func (s memKeys) GetLive(_ context.Context, contractID uint64) (*model.KeyCollection, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := len(s.db.keys) - 1; i >= 0; i-- {
		kc := s.db.keys[i]
		if kc.ContractID == contractID && kc.Status != model.KeyCollectionSuperseded {
			cp := *kc
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s memKeys) find(id uint64) *model.KeyCollection {
	for _, kc := range s.db.keys {
		if kc.ID == id {
			return kc
		}
	}
	return nil
}

func (s memKeys) Confirm(_ context.Context, id uint64, slot int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	kc := s.find(id)
	if kc == nil {
		return ErrNotFound
	}
	if kc.Status != model.KeyCollectionProposed {
		return ErrConcurrentModification
	}
	kc.Status = model.KeyCollectionConfirmed
	kc.ChosenSlot = &slot
	return nil
}

func (s memKeys) Complete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	kc := s.find(id)
	if kc == nil {
		return ErrNotFound
	}
	if kc.Status != model.KeyCollectionConfirmed {
		return ErrConcurrentModification
	}
	kc.Status = model.KeyCollectionCompleted
	return nil
}

// ----- ChecklistStore -----

type memChecklists struct{ db *memDB }

func (s memChecklists) Create(_ context.Context, cl *model.MoveInChecklist) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cl.ID = s.db.id()
	cp := *cl
	s.db.checklists[cl.ID] = &cp
	return nil
}

func (s memChecklists) GetByID(_ context.Context, id uint64) (*model.MoveInChecklist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cl, ok := s.db.checklists[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *cl
	return &cp, nil
}

func (s memChecklists) GetByContract(_ context.Context, contractID uint64) (*model.MoveInChecklist, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, cl := range s.db.checklists {
		if cl.ContractID == contractID {
			cp := *cl
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s memChecklists) mutate(id uint64, cond func(*model.MoveInChecklist) bool, apply func(*model.MoveInChecklist)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cl, ok := s.db.checklists[id]
	if !ok {
		return ErrNotFound
	}
	if !cond(cl) {
		return ErrConcurrentModification
	}
	apply(cl)
	return nil
}

func (s memChecklists) UpdateRooms(_ context.Context, id uint64, rooms []model.ChecklistRoom) error {
	return s.mutate(id,
		func(cl *model.MoveInChecklist) bool { return cl.Status == model.ChecklistDraft },
		func(cl *model.MoveInChecklist) { cl.Rooms = rooms })
}

func (s memChecklists) SetTenantSigned(_ context.Context, id uint64, sig model.Signature) error {
	return s.mutate(id,
		func(cl *model.MoveInChecklist) bool {
			return cl.Status == model.ChecklistDraft && cl.TenantSignature == nil
		},
		func(cl *model.MoveInChecklist) {
			cp := sig
			cl.TenantSignature = &cp
			cl.Status = model.ChecklistTenantSigned
		})
}

func (s memChecklists) SetCompleted(_ context.Context, id uint64, sig model.Signature) error {
	return s.mutate(id,
		func(cl *model.MoveInChecklist) bool {
			return cl.Status == model.ChecklistTenantSigned && cl.LandlordSignature == nil
		},
		func(cl *model.MoveInChecklist) {
			cp := sig
			cl.LandlordSignature = &cp
			cl.Status = model.ChecklistCompleted
		})
}

// ----- ModificationStore -----

type memMods struct{ db *memDB }

func (s memMods) CreatePending(_ context.Context, req *model.ModificationRequest) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.mods {
		if existing.ContractID == req.ContractID &&
			existing.Type == req.Type &&
			existing.Status == model.ModificationPending {
			return ErrDuplicatePending
		}
	}
	req.ID = s.db.id()
	cp := *req
	s.db.mods[req.ID] = &cp
	return nil
}

func (s memMods) GetByID(_ context.Context, id uint64) (*model.ModificationRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	req, ok := s.db.mods[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (s memMods) ListByContract(_ context.Context, contractID uint64) ([]model.ModificationRequest, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.ModificationRequest
	for _, req := range s.db.mods {
		if req.ContractID == contractID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s memMods) Resolve(_ context.Context, id uint64, status model.ModificationStatus, responderID uint64, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	req, ok := s.db.mods[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != model.ModificationPending {
		return ErrConcurrentModification
	}
	req.Status = status
	req.RespondedBy = &responderID
	req.RespondedAt = &at
	return nil
}

func (s memMods) Reopen(_ context.Context, id uint64, from model.ModificationStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	req, ok := s.db.mods[id]
	if !ok {
		return ErrNotFound
	}
	if req.Status != from {
		return ErrConcurrentModification
	}
	req.Status = model.ModificationPending
	req.RespondedBy = nil
	req.RespondedAt = nil
	return nil
}

// ----- IntentStore -----

type memIntents struct{ db *memDB }

func (s memIntents) Create(_ context.Context, pi *model.PaymentIntent) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pi.ID = s.db.id()
	cp := *pi
	s.db.intents[pi.ProviderRef] = &cp
	return nil
}

func (s memIntents) GetByProviderRef(_ context.Context, ref string) (*model.PaymentIntent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	pi, ok := s.db.intents[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *pi
	return &cp, nil
}

// ----- EventPublisher -----

type memEvents struct{ db *memDB }

func (s memEvents) PublishContractEvent(_ context.Context, ev queue.ContractEvent) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.events = append(s.db.events, ev)
	return nil
}

func (db *memDB) eventTypes() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]string, 0, len(db.events))
	for _, ev := range db.events {
		out = append(out, ev.Type)
	}
	return out
}

// ----- payment.Provider fake -----

type fakeProvider struct {
	mu      sync.Mutex
	n       int
	fail    error
	created []uint32 // amounts, in call order
}

func (p *fakeProvider) CreateIntent(_ context.Context, amountCents uint32, _ string, _ map[string]string) (payment.Intent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return payment.Intent{}, p.fail
	}
	p.n++
	p.created = append(p.created, amountCents)
	return payment.Intent{
		ID:           fmt.Sprintf("pi_test_%d", p.n),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", p.n),
	}, nil
}

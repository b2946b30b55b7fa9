package registry

import (
	"slices"
	"sync"
	"time"

	"locshare/internal/domain"
)

// Snapshot is a point-in-time copy of the registry contents.
type Snapshot struct {
	Self      *domain.SelfRecord    `json:"self,omitempty"`
	Shared    []domain.SharedRecord `json:"shared"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Registry holds the last successfully decoded records.
// Thread-safe; readers never see a half-replaced self/shared pairing.
type Registry struct {
	mu        sync.RWMutex
	self      *domain.SelfRecord
	shared    []domain.SharedRecord
	updatedAt time.Time
	now       func() time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		shared: []domain.SharedRecord{},
		now:    time.Now,
	}
}

// UpdateSelf replaces the authenticated record.
func (r *Registry) UpdateSelf(rec domain.SelfRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.self = &rec
	r.updatedAt = r.now()
}

// UpdateShared replaces the whole shared list. Individual entries are never patched.
func (r *Registry) UpdateShared(list []domain.SharedRecord) {
	cp := slices.Clone(list)
	if cp == nil {
		cp = []domain.SharedRecord{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared = cp
	r.updatedAt = r.now()
}

// Replace swaps both halves of the snapshot under one lock.
// A nil self clears the authenticated record.
func (r *Registry) Replace(self *domain.SelfRecord, shared []domain.SharedRecord) {
	var selfCopy *domain.SelfRecord
	if self != nil {
		rec := *self
		selfCopy = &rec
	}
	cp := slices.Clone(shared)
	if cp == nil {
		cp = []domain.SharedRecord{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.self = selfCopy
	r.shared = cp
	r.updatedAt = r.now()
}

// CurrentSelf returns a copy of the authenticated record, if one is held.
func (r *Registry) CurrentSelf() (domain.SelfRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.self == nil {
		return domain.SelfRecord{}, false
	}
	return *r.self, true
}

// CurrentShared returns a copy of the shared list in decode order.
func (r *Registry) CurrentShared() []domain.SharedRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.shared)
}

// FindByNickname looks up a shared record by nickname.
func (r *Registry) FindByNickname(name string) (domain.SharedRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.FindByNickname(r.shared, name)
}

// FindByFullName looks up a shared record by full name.
func (r *Registry) FindByFullName(name string) (domain.SharedRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.FindByFullName(r.shared, name)
}

// UpdatedAt returns when the registry last changed. Zero means never.
func (r *Registry) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}

// Snapshot returns a consistent copy of both halves.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Shared:    slices.Clone(r.shared),
		UpdatedAt: r.updatedAt,
	}
	if r.self != nil {
		rec := *r.self
		snap.Self = &rec
	}
	return snap
}

// Restore loads a previously taken snapshot, e.g. from storage on warm start.
func (r *Registry) Restore(snap Snapshot) {
	r.Replace(snap.Self, snap.Shared)

	r.mu.Lock()
	defer r.mu.Unlock()
	if !snap.UpdatedAt.IsZero() {
		r.updatedAt = snap.UpdatedAt
	}
}

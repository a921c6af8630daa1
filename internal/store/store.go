package store

import (
	"strings"
	"sync"

	"github.com/garra-os/backend/internal/models"
)

// Store holds the canonical ordered collection of service orders. Newly
// created orders are prepended, so insertion order is the default display
// order. All state lives in memory; a restart starts from the seed list.
type Store struct {
	mu     sync.RWMutex
	orders []models.ServiceOrder
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store preloaded with the initial call list.
func NewSeeded() *Store {
	s := New()
	s.orders = append(s.orders, SeedOrders()...)
	return s
}

// Create inserts the order at the front of the sequence. Duplicate ids are
// not rejected: a later Update against the shared id wins, which is a known
// limitation of the id scheme, not a defended invariant.
func (s *Store) Create(o models.ServiceOrder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append([]models.ServiceOrder{cloneOrder(o)}, s.orders...)
}

// Update replaces the record with a matching id in place. A miss leaves the
// collection unchanged and reports false.
func (s *Store) Update(o models.ServiceOrder) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = cloneOrder(o)
			return true
		}
	}
	return false
}

// Patch merges the non-nil fields into the matching record. A miss leaves the
// collection unchanged and reports false.
func (s *Store) Patch(id string, p models.OrderPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		o := &s.orders[i]
		if p.SchoolName != nil {
			o.SchoolName = *p.SchoolName
		}
		if p.Description != nil {
			o.Description = *p.Description
		}
		if p.Address != nil {
			o.Address = *p.Address
		}
		if p.Contact != nil {
			o.Contact = *p.Contact
		}
		if p.Priority != nil {
			o.Priority = *p.Priority
		}
		if p.Status != nil {
			o.Status = *p.Status
		}
		if p.ServiceName != nil {
			o.ServiceName = *p.ServiceName
		}
		if p.LastVisitDate != nil {
			o.LastVisitDate = *p.LastVisitDate
		}
		if p.LastVisitTechnician != nil {
			o.LastVisitTechnician = *p.LastVisitTechnician
		}
		if p.LastVisitPhotoURL != nil {
			o.LastVisitPhotoURL = *p.LastVisitPhotoURL
		}
		return true
	}
	return false
}

// Delete removes the matching record. A miss is a no-op reporting false.
// Clearing a selection that referenced the deleted order is the session
// controller's responsibility.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return true
		}
	}
	return false
}

// ClearExecutionResult resets a record's execution-result fields while
// leaving status and descriptive fields untouched. Used to reopen a completed
// card for redo without deleting the order.
func (s *Store) ClearExecutionResult(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			o := &s.orders[i]
			o.SolutionApplied = ""
			o.PartsUsed = ""
			o.HealthStatus = ""
			o.Photos = nil
			o.CompletionDate = nil
			o.TechnicianName = ""
			return true
		}
	}
	return false
}

// RemovePhoto drops a photo from the matching record by URL, covering both
// execution photos and the legacy last-visit photo fields.
func (s *Store) RemovePhoto(id string, photoURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		o := &s.orders[i]
		kept := o.Photos[:0]
		for _, p := range o.Photos {
			if p.URL != photoURL {
				kept = append(kept, p)
			}
		}
		o.Photos = kept
		if len(o.Photos) == 0 {
			o.Photos = nil
		}
		if o.LastVisitPhotoURL == photoURL {
			o.LastVisitPhotoURL = ""
		}
		if o.LastVisitSecondPhotoURL == photoURL {
			o.LastVisitSecondPhotoURL = ""
		}
		return true
	}
	return false
}

func (s *Store) Get(id string) (models.ServiceOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			return cloneOrder(s.orders[i]), true
		}
	}
	return models.ServiceOrder{}, false
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status   models.OSStatus
	Priority models.OSPriority
	Query    string
}

// List returns the orders in display order, optionally filtered. The query
// matches case-insensitively against id, school name and description.
func (s *Store) List(f Filter) []models.ServiceOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.ServiceOrder, 0, len(s.orders))
	for i := range s.orders {
		o := s.orders[i]
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Priority != "" && o.Priority != f.Priority {
			continue
		}
		if q != "" && !matchesQuery(o, q) {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out
}

// Snapshot returns a deep copy of the whole collection in order.
func (s *Store) Snapshot() []models.ServiceOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ServiceOrder, len(s.orders))
	for i := range s.orders {
		out[i] = cloneOrder(s.orders[i])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func matchesQuery(o models.ServiceOrder, q string) bool {
	return strings.Contains(strings.ToLower(o.ID), q) ||
		strings.Contains(strings.ToLower(o.SchoolName), q) ||
		strings.Contains(strings.ToLower(o.Description), q)
}

func cloneOrder(o models.ServiceOrder) models.ServiceOrder {
	c := o
	if o.Photos != nil {
		c.Photos = append([]models.OSPhoto(nil), o.Photos...)
	}
	if o.CompletionDate != nil {
		d := *o.CompletionDate
		c.CompletionDate = &d
	}
	return c
}

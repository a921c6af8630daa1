package photos

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garra-os/backend/internal/models"
)

var (
	ErrInvalidType = errors.New("photo type must be BEFORE or AFTER")
	ErrEmptyPhoto  = errors.New("photo payload is empty")
)

// Handle is an in-memory reference to a captured photo. The URL is a display
// handle served by the API while the execution session is alive; nothing is
// uploaded anywhere.
type Handle struct {
	ID        string           `json:"id"`
	URL       string           `json:"url"`
	Type      models.PhotoType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Size      int64            `json:"size"`
}

// Registry keeps the photos staged during the active execution session. Its
// lifetime is scoped to that session: ReleaseAll drops handles and bytes when
// the session ends, whether committed or abandoned.
type Registry struct {
	mu      sync.Mutex
	order   []string
	handles map[string]Handle
	data    map[string][]byte
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		handles: map[string]Handle{},
		data:    map[string][]byte{},
		now:     time.Now,
	}
}

func (r *Registry) Add(payload []byte, typ models.PhotoType) (Handle, error) {
	if !typ.Valid() {
		return Handle{}, ErrInvalidType
	}
	if len(payload) == 0 {
		return Handle{}, ErrEmptyPhoto
	}
	id := uuid.NewString()
	h := Handle{
		ID:        id,
		URL:       "/api/session/photos/" + id,
		Type:      typ,
		Timestamp: r.now().UTC(),
		Size:      int64(len(payload)),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
	r.handles[id] = h
	r.data[id] = append([]byte(nil), payload...)
	return h, nil
}

// Remove drops a staged photo. A miss is a no-op reporting false.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[id]; !ok {
		return false
	}
	delete(r.handles, id)
	delete(r.data, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Get(id string) ([]byte, Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	if !ok {
		return nil, Handle{}, false
	}
	return append([]byte(nil), r.data[id]...), h, true
}

// List returns the staged handles in capture order.
func (r *Registry) List() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Handle, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.handles[id])
	}
	return out
}

// Photos converts the staged handles into order photo records.
func (r *Registry) Photos() []models.OSPhoto {
	handles := r.List()
	out := make([]models.OSPhoto, 0, len(handles))
	for _, h := range handles {
		out = append(out, models.OSPhoto{URL: h.URL, Type: h.Type, Timestamp: h.Timestamp})
	}
	return out
}

// Count returns how many staged photos exist per type.
func (r *Registry) Count() (before, after int) {
	for _, h := range r.List() {
		if h.Type == models.PhotoBefore {
			before++
		} else {
			after++
		}
	}
	return before, after
}

// ReleaseAll frees every staged photo.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.handles = map[string]Handle{}
	r.data = map[string][]byte{}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

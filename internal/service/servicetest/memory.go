// Package servicetest provides in-memory stores and a recording event
// publisher that satisfy the service interfaces.  They are meant for tests
// that exercise services or handlers without a database.
package servicetest

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
	"github.com/rihanvyakoob07/authenflow-platform/internal/queue"
	"github.com/rihanvyakoob07/authenflow-platform/internal/repository"
)

// QuietLogger returns a logger that discards its output.
func QuietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Users is an in-memory UserStore with unique emails.
type Users struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func NewUsers() *Users { return &Users{byID: map[uint64]model.User{}} }

func (m *Users) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = model.NormalizeEmail(u.Email)
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == model.NormalizeEmail(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *Users) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.byID {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.byID[u.ID] = *u
	return nil
}

func (m *Users) SetRole(_ context.Context, id uint64, role model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	m.byID[id] = u
	return nil
}

func (m *Users) CountByRole(_ context.Context, role model.Role) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored users.
func (m *Users) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Wishlist is an in-memory WishlistStore.
type Wishlist struct {
	mu    sync.Mutex
	items map[uint64][]uint64
}

func NewWishlist() *Wishlist { return &Wishlist{items: map[uint64][]uint64{}} }

func (m *Wishlist) Add(_ context.Context, userID, productID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.items[userID] {
		if id == productID {
			return repository.ErrDuplicateEntry
		}
	}
	m.items[userID] = append(m.items[userID], productID)
	return nil
}

func (m *Wishlist) Remove(_ context.Context, userID, productID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[userID][:0]
	for _, id := range m.items[userID] {
		if id != productID {
			kept = append(kept, id)
		}
	}
	m.items[userID] = kept
	return nil
}

func (m *Wishlist) ProductIDs(_ context.Context, userID uint64) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64{}, m.items[userID]...), nil
}

// Products is an in-memory ProductStore.  AppendReviews recomputes the
// rating under the store lock, like the SQL transaction does.
type Products struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]*model.Product
}

func NewProducts() *Products { return &Products{byID: map[uint64]*model.Product{}} }

func clone(p *model.Product) *model.Product {
	c := *p
	c.Images = append([]string{}, p.Images...)
	c.Reviews = append([]model.Review{}, p.Reviews...)
	return &c
}

func (m *Products) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = clone(p)
	return nil
}

func (m *Products) GetByID(_ context.Context, id uint64) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (m *Products) ListAll(_ context.Context) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Products) ListByIDs(_ context.Context, ids []uint64) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (m *Products) Update(_ context.Context, id uint64, ch model.ProductChanges) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ch.Apply(p)
	return clone(p), nil
}

func (m *Products) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *Products) IncrementClicks(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Clicks++
	return nil
}

func (m *Products) AppendReviews(_ context.Context, productID uint64, reviews []model.Review) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[productID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Reviews = append(p.Reviews, reviews...)
	p.ApplyRating()
	return clone(p), nil
}

func (m *Products) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *Products) TotalClicks(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.byID {
		n += p.Clicks
	}
	return n, nil
}

// Publisher records every published event.
type Publisher struct {
	mu     sync.Mutex
	events []queue.ActivityEvent
}

func (r *Publisher) Publish(ev queue.ActivityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// All returns a copy of the recorded events.
func (r *Publisher) All() []queue.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.ActivityEvent{}, r.events...)
}

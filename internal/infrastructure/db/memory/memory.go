// Package memory holds process-local stores used by the memory driver and in
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.Roles = append([]domain.Role(nil), a.Roles...)
	return &c
}

// AccountStore keeps accounts keyed by username.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *AccountStore) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

// Save inserts accounts without an ID and replaces existing ones. A username
// already held by another account yields domain.ErrConflict.
func (s *AccountStore) Save(_ context.Context, a *domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := cloneAccount(a)
	now := time.Now().UTC()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if holder, taken := s.accounts[saved.Username]; taken && holder.ID != saved.ID {
		return nil, domain.ErrConflict
	}

	if saved.ID == "" {
		saved.ID = uuid.NewString()
	} else {
		var previous string
		for name, existing := range s.accounts {
			if existing.ID == saved.ID {
				previous = name
				break
			}
		}
		if previous == "" {
			return nil, domain.ErrNotFound
		}
		delete(s.accounts, previous)
	}

	s.accounts[saved.Username] = saved
	return cloneAccount(saved), nil
}

func (s *AccountStore) FindAll(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, cloneAccount(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// RoleStore keeps roles keyed by name.
type RoleStore struct {
	mu    sync.Mutex
	roles map[string]domain.Role
}

func NewRoleStore() *RoleStore {
	return &RoleStore{roles: make(map[string]domain.Role)}
}

func (s *RoleStore) FindByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *RoleStore) Save(_ context.Context, role *domain.Role) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := *role
	if existing, ok := s.roles[saved.Name]; ok && existing.ID != saved.ID {
		return nil, domain.ErrConflict
	}
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	for name, r := range s.roles {
		if r.ID == saved.ID {
			delete(s.roles, name)
		}
	}
	s.roles[saved.Name] = saved
	return &saved, nil
}

// GetOrCreate is atomic: concurrent callers for one name all receive the same
// role.
func (s *RoleStore) GetOrCreate(_ context.Context, name string) (*domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.roles[name]; ok {
		return &r, nil
	}
	r := domain.Role{ID: uuid.NewString(), Name: name}
	s.roles[name] = r
	return &r, nil
}

// ClientStore assigns sequential IDs starting at 1.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[int64]domain.Client
	nextID  int64
}

func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[int64]domain.Client)}
}

func (s *ClientStore) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	created := *c
	created.ID = s.nextID
	s.clients[created.ID] = created
	return &created, nil
}

func (s *ClientStore) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *ClientStore) FindAll(_ context.Context) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ClientStore) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	s.clients[c.ID] = *c
	updated := *c
	return &updated, nil
}

func (s *ClientStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

// Denylist records revoked session IDs until they expire.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewDenylist() *Denylist {
	return &Denylist{entries: make(map[string]time.Time), now: time.Now}
}

func (d *Denylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, exp := range d.entries {
		if !exp.After(now) {
			delete(d.entries, k)
		}
	}
	d.entries[id] = now.Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.entries[id]
	if !ok {
		return false, nil
	}
	if !exp.After(d.now()) {
		delete(d.entries, id)
		return false, nil
	}
	return true, nil
}

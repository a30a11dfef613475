package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

// cheapParams keeps argon2id fast in tests.
var cheapParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Roles = append([]domain.Role(nil), a.Roles...)
	return &c
}

type stubUserRepo struct {
	mu      sync.Mutex
	byName  map[string]*domain.Account
	nextID  int
	findErr error
	saveErr error
	saves   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byName: make(map[string]*domain.Account)}
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubUserRepo) Save(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if a.ID == "" {
		if _, exists := r.byName[a.Username]; exists {
			return nil, domain.ErrConflict
		}
		r.nextID++
		c := cloneAccount(a)
		c.ID = fmt.Sprintf("acct-%d", r.nextID)
		r.byName[c.Username] = c
		return cloneAccount(c), nil
	}
	for name, existing := range r.byName {
		if existing.ID == a.ID {
			c := cloneAccount(a)
			c.Username = name
			r.byName[name] = c
			return cloneAccount(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]*domain.Account, 0, len(r.byName))
	for _, a := range r.byName {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

type stubRoleRepo struct {
	mu      sync.Mutex
	byName  map[string]domain.Role
	inserts int
	err     error
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{byName: make(map[string]domain.Role)}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &role, nil
}

func (r *stubRoleRepo) Save(_ context.Context, role *domain.Role) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *role
	if c.ID == "" {
		r.inserts++
		c.ID = fmt.Sprintf("role-%d", r.inserts)
	}
	r.byName[c.Name] = c
	return &c, nil
}

func (r *stubRoleRepo) GetOrCreate(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if role, ok := r.byName[name]; ok {
		return &role, nil
	}
	r.inserts++
	role := domain.Role{ID: fmt.Sprintf("role-%d", r.inserts), Name: name}
	r.byName[name] = role
	return &role, nil
}

// countingHasher records Verify calls and compares plaintext with a prefix.
type countingHasher struct {
	mu       sync.Mutex
	verifies []string
	verifyFn func(password, hash string) (bool, error)
}

func (h *countingHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (h *countingHasher) Verify(password, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies = append(h.verifies, hash)
	h.mu.Unlock()
	if h.verifyFn != nil {
		return h.verifyFn(password, hash)
	}
	return hash == "plain:"+password, nil
}

type stubDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newStubDenylist() *stubDenylist {
	return &stubDenylist{revoked: make(map[string]time.Duration)}
}

func (d *stubDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = ttl
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

type stubClientRepo struct {
	byID      map[int64]*domain.Client
	nextID    int64
	createErr error
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{byID: make(map[int64]*domain.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubClientRepo) FindAll(_ context.Context) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0, len(r.byID))
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	if _, ok := r.byID[c.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	r.byID[c.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubClientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/api/metrics"
	"github.com/clientdesk/clientdesk/internal/core/domain"
	"github.com/clientdesk/clientdesk/internal/core/ports"
)

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	v, err := NewValidator()
	require.NoError(t, err)
	e.Validator = v
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newMetrics() (*metrics.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.New(reg), reg
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var sum float64
	metric:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	return 0
}

type stubAuthenticator struct {
	principalFn func(ctx context.Context, username, password string) (*domain.Account, error)
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, username, password string) (bool, error) {
	acct, err := s.principalFn(ctx, username, password)
	return acct != nil, err
}

func (s *stubAuthenticator) Principal(ctx context.Context, username, password string) (*domain.Account, error) {
	return s.principalFn(ctx, username, password)
}

type stubSessions struct {
	token     string
	expiresAt time.Time
	issueErr  error
	revokeErr error
	revoked   []string
}

func (s *stubSessions) Issue(*domain.Account) (string, time.Time, error) {
	return s.token, s.expiresAt, s.issueErr
}

func (s *stubSessions) Parse(context.Context, string) (*domain.Principal, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubSessions) Revoke(_ context.Context, p *domain.Principal) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, p.TokenID)
	return nil
}

type stubRegistrar struct {
	registerFn func(ctx context.Context, username, password, confirm string) (*domain.Account, error)
	accounts   []*domain.Account
	err        error
}

func (s *stubRegistrar) Register(ctx context.Context, username, password, confirm string) (*domain.Account, error) {
	return s.registerFn(ctx, username, password, confirm)
}

func (s *stubRegistrar) Accounts(context.Context) ([]*domain.Account, error) {
	return s.accounts, s.err
}

type stubClientService struct {
	clients map[int64]*domain.Client
	nextID  int64
	err     error
}

func newStubClientService() *stubClientService {
	return &stubClientService{clients: map[int64]*domain.Client{}}
}

func (s *stubClientService) List(context.Context) ([]*domain.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.Client
	for id := int64(1); id <= s.nextID; id++ {
		if c, ok := s.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubClientService) Get(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubClientService) Create(_ context.Context, in ports.ClientInput) (*domain.Client, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	c := &domain.Client{ID: s.nextID, Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
	s.clients[c.ID] = c
	return c, nil
}

func (s *stubClientService) Update(_ context.Context, id int64, in ports.ClientInput) (*domain.Client, error) {
	if _, ok := s.clients[id]; !ok {
		return nil, domain.ErrNotFound
	}
	c := &domain.Client{ID: id, Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address}
	s.clients[id] = c
	return c, nil
}

func (s *stubClientService) Delete(_ context.Context, id int64) error {
	if _, ok := s.clients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.clients, id)
	return nil
}

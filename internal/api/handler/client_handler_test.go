package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestClientHandler_CRUD(t *testing.T) {
	e := newEcho(t)
	m, reg := newMetrics()
	svc := newStubClientService()
	h := NewClientHandler(svc, m)

	c, rec := newJSONContext(e, http.MethodPost, "/clients", `{"name":"Acme","email":"ops@acme.test"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Acme", created.Name)

	c, rec = newJSONContext(e, http.MethodGet, "/clients/1", "")
	require.NoError(t, h.Get(withID(c, "1")))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/clients/1", `{"name":"Acme Corp","phone":"555"}`)
	require.NoError(t, h.Update(withID(c, "1")))
	var updated domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "555", updated.Phone)

	c, rec = newJSONContext(e, http.MethodGet, "/clients", "")
	require.NoError(t, h.List(c))
	var list []domain.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	c, rec = newJSONContext(e, http.MethodPost, "/clients/1/delete", "")
	require.NoError(t, h.Delete(withID(c, "1")))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, _ = newJSONContext(e, http.MethodGet, "/clients/1", "")
	assert.ErrorIs(t, h.Get(withID(c, "1")), domain.ErrNotFound)

	assert.Equal(t, 3.0, counterValue(t, reg, "clientdesk_client_mutations_total", nil))
}

func TestClientHandler_List_Empty(t *testing.T) {
	e := newEcho(t)
	m, _ := newMetrics()
	h := NewClientHandler(newStubClientService(), m)

	c, rec := newJSONContext(e, http.MethodGet, "/clients", "")
	require.NoError(t, h.List(c))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestClientHandler_InvalidID(t *testing.T) {
	e := newEcho(t)
	m, _ := newMetrics()
	h := NewClientHandler(newStubClientService(), m)

	for _, id := range []string{"abc", "0", "-3", ""} {
		c, _ := newJSONContext(e, http.MethodGet, "/clients/"+id, "")
		var he *echo.HTTPError
		require.ErrorAs(t, h.Get(withID(c, id)), &he, "id %q", id)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	}
}

func TestClientHandler_Create_Validation(t *testing.T) {
	e := newEcho(t)
	m, _ := newMetrics()
	h := NewClientHandler(newStubClientService(), m)

	c, _ := newJSONContext(e, http.MethodPost, "/clients", `{"name":"  ","email":"not-an-email"}`)
	err := h.Create(c)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
}

func TestClientHandler_Create_FieldLimits(t *testing.T) {
	// Well-formed address, 156 characters.
	longEmail := strings.Repeat("a", 60) + "@" + strings.Repeat("b", 60) + "." + strings.Repeat("c", 30) + ".com"

	tests := []struct {
		name    string
		req     clientRequest
		field   string
		wantErr bool
	}{
		{name: "name at limit", req: clientRequest{Name: strings.Repeat("n", 150)}},
		{name: "name over limit", req: clientRequest{Name: strings.Repeat("n", 151)}, field: "name", wantErr: true},
		{name: "email over limit", req: clientRequest{Name: "Acme", Email: longEmail}, field: "email", wantErr: true},
		{name: "phone over limit", req: clientRequest{Name: "Acme", Phone: strings.Repeat("1", 51)}, field: "phone", wantErr: true},
		{name: "address over limit", req: clientRequest{Name: "Acme", Address: strings.Repeat("a", 256)}, field: "address", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho(t)
			m, _ := newMetrics()
			h := NewClientHandler(newStubClientService(), m)

			body, err := json.Marshal(tt.req)
			require.NoError(t, err)
			c, rec := newJSONContext(e, http.MethodPost, "/clients", string(body))
			err = h.Create(c)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, http.StatusCreated, rec.Code)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestClientHandler_UpdateMissing(t *testing.T) {
	e := newEcho(t)
	m, _ := newMetrics()
	h := NewClientHandler(newStubClientService(), m)

	c, _ := newJSONContext(e, http.MethodPost, "/clients/42", `{"name":"Ghost"}`)
	assert.ErrorIs(t, h.Update(withID(c, "42")), domain.ErrNotFound)

	c, _ = newJSONContext(e, http.MethodPost, "/clients/42/delete", "")
	assert.ErrorIs(t, h.Delete(withID(c, "42")), domain.ErrNotFound)
}

func TestClientHandler_StorageError(t *testing.T) {
	e := newEcho(t)
	m, _ := newMetrics()
	svc := newStubClientService()
	svc.err = errors.Join(domain.ErrStorage, errors.New("connection reset"))
	h := NewClientHandler(svc, m)

	c, _ := newJSONContext(e, http.MethodGet, "/clients", "")
	assert.ErrorIs(t, h.List(c), domain.ErrStorage)
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

var clientCols = []string{"id", "name", "email", "phone", "address"}

func TestClientRepository_Create(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO clients`).
		WithArgs("Acme", "ops@acme.test", "555", "Main St").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	c, err := NewClientRepository(mock, 0).Create(context.Background(),
		&domain.Client{Name: "Acme", Email: "ops@acme.test", Phone: "555", Address: "Main St"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
}

func TestClientRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM clients WHERE id`).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(clientCols).AddRow(int64(7), "Acme", "", "", ""))

		c, err := NewClientRepository(mock, 0).FindByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Acme", c.Name)
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM clients WHERE id`).
			WithArgs(int64(8)).
			WillReturnRows(pgxmock.NewRows(clientCols))

		_, err := NewClientRepository(mock, 0).FindByID(context.Background(), 8)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClientRepository_FindAll(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM clients ORDER BY id`).
		WillReturnRows(pgxmock.NewRows(clientCols).
			AddRow(int64(1), "A", "", "", "").
			AddRow(int64(2), "B", "", "", ""))

	clients, err := NewClientRepository(mock, 0).FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestClientRepository_UpdateAndDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "applied", affected: 1},
		{name: "missing", affected: 0, wantErr: domain.ErrNotFound},
		{name: "database error", execErr: errors.New("broken pipe"), wantErr: domain.ErrStorage},
	}

	for _, tt := range tests {
		t.Run("update "+tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`UPDATE clients SET`).WithArgs(int64(3), "New", "", "", "")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}

			_, err := NewClientRepository(mock, 0).Update(context.Background(), &domain.Client{ID: 3, Name: "New"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})

		t.Run("delete "+tt.name, func(t *testing.T) {
			mock := newMock(t)
			exp := mock.ExpectExec(`DELETE FROM clients`).WithArgs(int64(3))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))
			}

			err := NewClientRepository(mock, 0).Delete(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

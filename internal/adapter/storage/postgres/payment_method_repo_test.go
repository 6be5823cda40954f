package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethodRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentMethodRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM payment_methods WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "is_active", "enabled_channels"}).
			AddRow(id, "TELEBIRR", true, []string{"app", "ussd"}))

	pm, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, "TELEBIRR", pm.Name)
	assert.True(t, pm.IsActive)
	assert.Equal(t, []string{"app", "ussd"}, pm.Channels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentMethodRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentMethodRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM payment_methods WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	pm, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, pm)
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount() *domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	roleID := uuid.New()
	return &domain.Account{
		ID:        uuid.New(),
		Name:      "Abebe Kebede",
		Status:    domain.AccountStatusActive,
		KycStatus: domain.KycStatusVerified,
		RoleID:    &roleID,
		Balance:   decimal.RequireFromString("100.00"),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func accountRow(a *domain.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "status", "kyc_status", "role_id", "balance", "created_at", "updated_at"}).
		AddRow(a.ID, a.Name, a.Status, a.KycStatus, a.RoleID, a.Balance, a.CreatedAt, a.UpdatedAt)
}

func TestAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(a.ID, a.Name, a.Status, a.KycStatus, a.RoleID, pgxmock.AnyArg(), a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id").
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	result, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.True(t, a.Balance.Equal(result.Balance))
	assert.Equal(t, *a.RoleID, *result.RoleID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	a := newTestAccount()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM accounts WHERE id .+ FOR UPDATE").
		WithArgs(a.ID).
		WillReturnRows(accountRow(a))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET balance").
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.UpdateBalance(context.Background(), tx, id, decimal.NewFromInt(60)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateBalance_Errors(t *testing.T) {
	tests := []struct {
		name   string
		result func(e *pgxmock.ExpectedExec)
		errMsg string
	}{
		{
			name:   "row missing",
			result: func(e *pgxmock.ExpectedExec) { e.WillReturnResult(pgxmock.NewResult("UPDATE", 0)) },
			errMsg: "account not found",
		},
		{
			name:   "check constraint",
			result: func(e *pgxmock.ExpectedExec) { e.WillReturnError(errors.New("violates check constraint")) },
			errMsg: "update account balance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			repo := NewAccountRepo(mock)
			id := uuid.New()

			mock.ExpectBegin()
			tt.result(mock.ExpectExec("UPDATE accounts SET balance").WithArgs(pgxmock.AnyArg(), id))

			tx, err := mock.Begin(context.Background())
			require.NoError(t, err)

			err = repo.UpdateBalance(context.Background(), tx, id, decimal.NewFromInt(1))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

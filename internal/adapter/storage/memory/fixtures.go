package memory

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type accountFixture struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	Status    string `mapstructure:"status"`
	KycStatus string `mapstructure:"kyc_status"`
	RoleID    string `mapstructure:"role_id"`
	Balance   string `mapstructure:"balance"`
}

type methodFixture struct {
	ID       string   `mapstructure:"id"`
	Name     string   `mapstructure:"name"`
	Active   bool     `mapstructure:"active"`
	Channels []string `mapstructure:"channels"`
}

type limitFixture struct {
	AccountID       string `mapstructure:"account_id"`
	RoleID          string `mapstructure:"role_id"`
	PaymentMethodID string `mapstructure:"payment_method_id"`
	PerTransaction  string `mapstructure:"per_transaction"`
	Daily           string `mapstructure:"daily"`
	Monthly         string `mapstructure:"monthly"`
}

type fixtures struct {
	Accounts       []accountFixture `mapstructure:"accounts"`
	PaymentMethods []methodFixture  `mapstructure:"payment_methods"`
	Limits         []limitFixture   `mapstructure:"limits"`
}

// LoadFixtures seeds the store from a YAML file with accounts, payment_methods and limits lists.
func (s *Store) LoadFixtures(ctx context.Context, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading fixtures: %w", err)
	}
	var f fixtures
	if err := v.Unmarshal(&f); err != nil {
		return fmt.Errorf("unmarshaling fixtures: %w", err)
	}

	for _, pm := range f.PaymentMethods {
		id, err := uuid.Parse(pm.ID)
		if err != nil {
			return fmt.Errorf("payment method %q: %w", pm.Name, err)
		}
		s.AddPaymentMethod(domain.PaymentMethod{ID: id, Name: pm.Name, IsActive: pm.Active, Channels: pm.Channels})
	}

	for _, af := range f.Accounts {
		a, err := af.toDomain()
		if err != nil {
			return fmt.Errorf("account %q: %w", af.Name, err)
		}
		if err := s.Accounts().Create(ctx, a); err != nil {
			return err
		}
	}

	for i, lf := range f.Limits {
		cfg, err := lf.toDomain()
		if err != nil {
			return fmt.Errorf("limit #%d: %w", i, err)
		}
		if err := s.Limits().Upsert(ctx, cfg); err != nil {
			return fmt.Errorf("limit #%d: %w", i, err)
		}
	}
	return nil
}

func (af accountFixture) toDomain() (*domain.Account, error) {
	id, err := uuid.Parse(af.ID)
	if err != nil {
		return nil, err
	}
	a := &domain.Account{
		ID:        id,
		Name:      af.Name,
		Status:    domain.AccountStatusActive,
		KycStatus: domain.KycStatusVerified,
		Balance:   decimal.Zero,
	}
	if af.Status != "" {
		a.Status = domain.AccountStatus(af.Status)
	}
	if af.KycStatus != "" {
		a.KycStatus = domain.KycStatus(af.KycStatus)
	}
	if af.RoleID != "" {
		roleID, err := uuid.Parse(af.RoleID)
		if err != nil {
			return nil, err
		}
		a.RoleID = &roleID
	}
	if af.Balance != "" {
		if a.Balance, err = decimal.NewFromString(af.Balance); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (lf limitFixture) toDomain() (*domain.LimitConfig, error) {
	cfg := &domain.LimitConfig{}
	var err error
	if cfg.PaymentMethodID, err = uuid.Parse(lf.PaymentMethodID); err != nil {
		return nil, err
	}
	if lf.AccountID != "" {
		id, err := uuid.Parse(lf.AccountID)
		if err != nil {
			return nil, err
		}
		cfg.AccountID = &id
	}
	if lf.RoleID != "" {
		id, err := uuid.Parse(lf.RoleID)
		if err != nil {
			return nil, err
		}
		cfg.RoleID = &id
	}
	for _, c := range []struct {
		raw string
		dst **decimal.Decimal
	}{
		{lf.PerTransaction, &cfg.PerTransaction},
		{lf.Daily, &cfg.Daily},
		{lf.Monthly, &cfg.Monthly},
	} {
		if c.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(c.raw)
		if err != nil {
			return nil, err
		}
		*c.dst = &d
	}
	return cfg, nil
}

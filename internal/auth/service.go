package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/gate"
	"github.com/erpdesk/erpdesk/internal/records"
)

// Account is the result of a successful sign-in.
type Account struct {
	Token string
	Name  string
}

// Service signs users in against the record store.
type Service struct {
	client *erpapi.Client
}

// NewService constructs a new Service.
func NewService(client *erpapi.Client) *Service {
	return &Service{client: client}
}

// Authenticate exchanges credentials for a bearer token and looks up the
// display name. A failed profile read falls back to the email address.
func (s *Service) Authenticate(ctx context.Context, creds records.Credentials) (Account, error) {
	token, err := s.client.Login(ctx, creds)
	if err != nil {
		return Account{}, err
	}
	return s.account(ctx, token, creds.Email), nil
}

// Register creates an account and signs it in.
func (s *Service) Register(ctx context.Context, reg records.Registration) (Account, error) {
	token, err := s.client.Register(ctx, reg)
	if err != nil {
		return Account{}, err
	}
	acct := s.account(ctx, token, reg.Email)
	if acct.Name == reg.Email && reg.Username != "" {
		acct.Name = reg.Username
	}
	return acct, nil
}

func (s *Service) account(ctx context.Context, token, fallback string) Account {
	acct := Account{Token: token, Name: fallback}
	g, err := gate.New(gate.NewMemoryStore())
	if err != nil || g.Login(token) != nil {
		return acct
	}
	profile, err := s.client.With(g).Profile(ctx)
	if err == nil && profile.Username != "" {
		acct.Name = profile.Username
	}
	return acct
}

// RejectionMessage returns the store's reason for refusing credentials, or
// fallback when it gave none.
func RejectionMessage(err error, fallback string) string {
	if !errors.Is(err, erpapi.ErrInvalidCredentials) {
		return fallback
	}
	msg := strings.TrimPrefix(err.Error(), erpapi.ErrInvalidCredentials.Error()+": ")
	if msg == err.Error() || msg == "" {
		return fallback
	}
	return msg
}

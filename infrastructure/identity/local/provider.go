package local

import (
	"context"
	"strings"
	"sync"

	"crud-microservices/application/ports"
	"crud-microservices/pkg/auth"
	apperrors "crud-microservices/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	id           string
	email        string
	name         string
	passwordHash []byte
}

// Provider keeps offline credentials in memory and signs HS256 tokens.
type Provider struct {
	mu       sync.RWMutex
	accounts map[string]account
	tokens   *auth.JWTGenerator
	cost     int
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates an offline provider. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewProvider(tokens *auth.JWTGenerator, cost int) *Provider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Provider{
		accounts: make(map[string]account),
		tokens:   tokens,
		cost:     cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers an already confirmed account and signs it in.
func (p *Provider) SignUp(_ context.Context, email, password, name string) (*ports.SignUpResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, apperrors.NewValidationError("password cannot be used").WithCause(err)
	}

	key := normalizeEmail(email)
	p.mu.Lock()
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return nil, apperrors.NewValidationError("User already exists")
	}
	acc := account{id: uuid.NewString(), email: email, name: name, passwordHash: hash}
	p.accounts[key] = acc
	p.mu.Unlock()

	token, err := p.tokens.GenerateToken(auth.CallerIdentity{UserID: acc.id, Email: acc.email, Name: acc.name})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}
	return &ports.SignUpResult{UserID: acc.id, Token: token}, nil
}

// SignIn checks the password and issues a token.
func (p *Provider) SignIn(_ context.Context, email, password string) (*ports.SignInResult, error) {
	p.mu.RLock()
	acc, ok := p.accounts[normalizeEmail(email)]
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, apperrors.NewAuthenticationError("Invalid credentials")
	}

	token, err := p.tokens.GenerateToken(auth.CallerIdentity{UserID: acc.id, Email: acc.email, Name: acc.name})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}
	return &ports.SignInResult{UserID: acc.id, Email: acc.email, Name: acc.name, Token: token}, nil
}

// ConfirmSignUp accepts any code; offline accounts are confirmed at sign-up.
func (p *Provider) ConfirmSignUp(context.Context, string, string) error {
	return nil
}

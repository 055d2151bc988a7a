package ports

import "context"

// SignUpResult is what an identity provider reports for a new account.
type SignUpResult struct {
	UserID            string
	NeedsConfirmation bool
	// Token is set when the provider signs the user in immediately.
	Token string
}

// SignInResult carries the credentials issued on sign-in. Offline providers
// fill Token; managed providers fill the three Cognito tokens.
type SignInResult struct {
	UserID       string
	Email        string
	Name         string
	Token        string
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// IdentityProvider manages credentials. Invalid credentials yield an
// authentication error; duplicate accounts a validation error.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (*SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	ConfirmSignUp(ctx context.Context, email, code string) error
}

package cognito

import (
	"context"
	"errors"

	"crud-microservices/application/ports"
	apperrors "crud-microservices/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"
)

// API is the subset of the Cognito client the provider uses.
type API interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
}

// Provider delegates credentials to a Cognito user pool app client.
type Provider struct {
	client   API
	clientID string
	logger   *zap.Logger
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider creates a Cognito-backed provider.
func NewProvider(client API, clientID string, logger *zap.Logger) *Provider {
	return &Provider{client: client, clientID: clientID, logger: logger}
}

// SignUp registers the user; Cognito sends the confirmation code.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*ports.SignUpResult, error) {
	out, err := p.client.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
		},
	})
	if err != nil {
		var exists *types.UsernameExistsException
		var weak *types.InvalidPasswordException
		var invalid *types.InvalidParameterException
		switch {
		case errors.As(err, &exists):
			return nil, apperrors.NewValidationError("User already exists").WithCause(err)
		case errors.As(err, &weak):
			return nil, apperrors.NewValidationError(aws.ToString(weak.Message)).WithCause(err)
		case errors.As(err, &invalid):
			return nil, apperrors.NewValidationError(aws.ToString(invalid.Message)).WithCause(err)
		}
		return nil, apperrors.NewUpstreamError("cognito", err)
	}

	return &ports.SignUpResult{
		UserID:            aws.ToString(out.UserSub),
		NeedsConfirmation: !out.UserConfirmed,
	}, nil
}

// SignIn runs the USER_PASSWORD_AUTH flow.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*ports.SignInResult, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		ClientId: aws.String(p.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notAuthorized *types.NotAuthorizedException
		var notFound *types.UserNotFoundException
		var notConfirmed *types.UserNotConfirmedException
		if errors.As(err, &notAuthorized) || errors.As(err, &notFound) || errors.As(err, &notConfirmed) {
			p.logger.Info("Sign-in rejected", zap.Error(err))
			return nil, apperrors.NewAuthenticationError("Invalid credentials").WithCause(err)
		}
		return nil, apperrors.NewUpstreamError("cognito", err)
	}

	if out.ChallengeName != "" {
		return nil, apperrors.NewValidationError("Authentication challenge required").
			WithDetails(map[string]interface{}{"challenge": string(out.ChallengeName)})
	}
	if out.AuthenticationResult == nil {
		return nil, apperrors.NewUpstreamError("cognito", errors.New("no authentication result"))
	}

	res := out.AuthenticationResult
	return &ports.SignInResult{
		Email:        email,
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
	}, nil
}

// ConfirmSignUp submits the emailed confirmation code.
func (p *Provider) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		var mismatch *types.CodeMismatchException
		var expired *types.ExpiredCodeException
		var notFound *types.UserNotFoundException
		if errors.As(err, &mismatch) || errors.As(err, &expired) || errors.As(err, &notFound) {
			return apperrors.NewValidationError("Invalid or expired confirmation code").WithCause(err)
		}
		return apperrors.NewUpstreamError("cognito", err)
	}
	return nil
}

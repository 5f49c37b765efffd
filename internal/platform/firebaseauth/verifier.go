package firebaseauth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/novaai/backend/pkg/apperr"
	cfgpkg "github.com/novaai/backend/pkg/config"
)

// TokenVerifier validates a client ID token and returns the account it
// belongs to.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// Identity is the subset of token claims the API relies on.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verifier wraps the Firebase admin auth client. When no credentials
// file is configured the verifier stays disabled and rejects every
// token, which keeps local development working without cloud access.
type Verifier struct {
	client *auth.Client
	log    *zap.SugaredLogger
}

func NewVerifier(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Verifier, error) {
	v := &Verifier{log: log}
	if cfg.Firebase.CredentialsFile == "" {
		log.Warnw("firebase credentials not configured, token verification disabled")
		return v, nil
	}

	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth client: %w", err)
	}
	v.client = client
	return v, nil
}

func (v *Verifier) Enabled() bool { return v.client != nil }

func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v.client == nil {
		return nil, fmt.Errorf("%w: token verification disabled", apperr.ErrUnauthorized)
	}
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}

	id := &Identity{UID: token.UID}
	if s, ok := token.Claims["email"].(string); ok {
		id.Email = s
	}
	if s, ok := token.Claims["name"].(string); ok {
		id.Name = s
	}
	if s, ok := token.Claims["picture"].(string); ok {
		id.Picture = s
	}
	return id, nil
}

var Module = fx.Options(
	fx.Provide(
		NewVerifier,
		func(v *Verifier) TokenVerifier { return v },
	),
)

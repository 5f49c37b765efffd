package oauthsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/apperr"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/tool"
	"github.com/novaai/backend/pkg/types"
)

// sessionTTL bounds how long the desktop client may wait for the web
// login to finish.
const sessionTTL = 10 * time.Minute

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Identity is what the desktop client receives once the login completes.
type Identity struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PhotoURL     string `json:"photo_url"`
	Handle       string `json:"handle"`
	Plan         string `json:"plan"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// CompleteInput carries the identity the web app attaches after login.
type CompleteInput struct {
	UID          string `json:"uid" binding:"required"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PhotoURL     string `json:"photo_url"`
	Handle       string `json:"handle"`
	Plan         string `json:"plan"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

// Create opens a new pending session.
func (s *Service) Create(ctx context.Context) (*models.OAuthSession, error) {
	now := time.Now()
	session := &models.OAuthSession{
		ID:        tool.GenerateSessionID(),
		Status:    models.OAuthSessionStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create oauth session: %w", err)
	}
	return session, nil
}

// Complete attaches a resolved identity to a pending session. The plan
// is normalized before storage so the desktop client never sees legacy
// alias values. Completing a missing or already-completed session fails
// with not-found; an expired one is deleted and fails with expired.
func (s *Service) Complete(ctx context.Context, sessionID string, in *CompleteInput) error {
	session, err := s.get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Expired(time.Now()) {
		s.deleteExpired(ctx, sessionID)
		return fmt.Errorf("%w: session %s", apperr.ErrExpired, sessionID)
	}

	plan := string(types.NormalizePlanTier(in.Plan, types.PlanTierFree))
	res := s.db.WithContext(ctx).Model(&models.OAuthSession{}).
		Where("id = ? AND status = ?", sessionID, models.OAuthSessionStatusPending).
		Updates(map[string]any{
			"status":        models.OAuthSessionStatusCompleted,
			"uid":           in.UID,
			"email":         in.Email,
			"display_name":  in.Name,
			"photo_url":     in.PhotoURL,
			"handle":        in.Handle,
			"plan":          plan,
			"id_token":      in.IDToken,
			"refresh_token": in.RefreshToken,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete oauth session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: session %s is not pending", apperr.ErrNotFound, sessionID)
	}
	return nil
}

// Consume polls a session. A pending session returns (nil, nil) so the
// caller can keep waiting. A completed session returns its identity
// exactly once: the read and the delete are one conditional statement,
// so two concurrent consumers cannot both win. Expired sessions are
// deleted and reported expired.
func (s *Service) Consume(ctx context.Context, sessionID string) (*Identity, error) {
	session, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		s.deleteExpired(ctx, sessionID)
		return nil, fmt.Errorf("%w: session %s", apperr.ErrExpired, sessionID)
	}
	if session.Status == models.OAuthSessionStatusPending {
		return nil, nil
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", sessionID, models.OAuthSessionStatusCompleted).
		Delete(&models.OAuthSession{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume oauth session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: session %s already consumed", apperr.ErrNotFound, sessionID)
	}

	return &Identity{
		UID:          session.UID,
		Email:        session.Email,
		Name:         session.DisplayName,
		PhotoURL:     session.PhotoURL,
		Handle:       session.Handle,
		Plan:         session.Plan,
		IDToken:      session.IDToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

func (s *Service) get(ctx context.Context, sessionID string) (*models.OAuthSession, error) {
	var session models.OAuthSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session %s", apperr.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load oauth session: %w", err)
	}
	return &session, nil
}

func (s *Service) deleteExpired(ctx context.Context, sessionID string) {
	if err := s.db.WithContext(ctx).Delete(&models.OAuthSession{}, "id = ?", sessionID).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to delete expired oauth session %s: %v", sessionID, err)
	}
}

var Module = fx.Options(
	fx.Provide(New),
)

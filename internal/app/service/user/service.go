package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/novaai/backend/internal/app/service/plan"
	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/apperr"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Profile is the resolved view of an account returned to clients.
type Profile struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	PhotoURL    string         `json:"photo_url"`
	Plan        types.PlanTier `json:"plan"`
	Limit       int64          `json:"limit"`
	Usage       int64          `json:"usage"`

	Subscription *models.Subscription `json:"subscription,omitempty"`
}

func (s *Service) Get(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// GetProfile returns the account with its tier resolved.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	tier := plan.ResolveUser(user)
	return &Profile{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PhotoURL:     user.PhotoURL,
		Plan:         tier,
		Limit:        plan.Quota(tier),
		Usage:        user.AICallUsage,
		Subscription: user.GetSubscription(),
	}, nil
}

// SetSubscription is the admin override path: it replaces the
// subscription sub-object and the root plan field directly, outside the
// webhook state machine. Both columns move in one transaction.
func (s *Service) SetSubscription(ctx context.Context, userID string, sub *models.Subscription, rootPlan string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		updates := map[string]any{
			"subscription": datatypes.NewJSONType(sub),
		}
		if rootPlan != "" {
			updates["plan"] = string(types.NormalizePlanTier(rootPlan, types.PlanTierFree))
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to set subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infof("subscription override applied, user_id=%s", userID)
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)

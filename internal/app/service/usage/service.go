package usage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/novaai/backend/internal/app/service/plan"
	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/apperr"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/types"

	"go.uber.org/zap"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Status is what clients see when they ask about their quota.
type Status struct {
	Plan         types.PlanTier `json:"plan"`
	CurrentUsage int64          `json:"currentUsage"`
	Limit        int64          `json:"limit"`
	Remaining    int64          `json:"remaining"`
	CanUse       bool           `json:"canUse"`
}

func buildStatus(tier types.PlanTier, used int64) *Status {
	limit := plan.Quota(tier)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		Plan:         tier,
		CurrentUsage: used,
		Limit:        limit,
		Remaining:    remaining,
		CanUse:       used < limit,
	}
}

func (s *Service) getUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// resetIfNeeded applies the billing-period reset before any quota math.
func (s *Service) resetIfNeeded(ctx context.Context, user *models.User, tier types.PlanTier) error {
	should, anchor := NeedsReset(user, tier)
	if !should {
		return nil
	}
	fields := ResetFields(anchor)
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infof("usage reset, user_id=%s, anchor=%v", user.ID, anchor)
	user.AICallUsage = 0
	user.UsageResetAt = anchor
	return nil
}

// CheckLimit reports the user's current quota state, resetting the
// counter first when a new billing period has started.
func (s *Service) CheckLimit(ctx context.Context, userID string) (*Status, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tier := plan.ResolveUser(user)
	if err := s.resetIfNeeded(ctx, user, tier); err != nil {
		return nil, err
	}
	return buildStatus(tier, user.AICallUsage), nil
}

// Increment consumes one call from the user's quota. The counter bump
// is a single guarded update so two concurrent calls can never push the
// counter past the limit. admitted reports whether this call got a
// unit; the status reflects the state after the attempt.
func (s *Service) Increment(ctx context.Context, userID string) (st *Status, admitted bool, err error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	tier := plan.ResolveUser(user)
	if err := s.resetIfNeeded(ctx, user, tier); err != nil {
		return nil, false, err
	}

	limit := plan.Quota(tier)
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND ai_call_usage < ?", userID, limit).
		UpdateColumn("ai_call_usage", gorm.Expr("ai_call_usage + 1"))
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to increment usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return buildStatus(tier, limit), false, nil
	}
	return buildStatus(tier, user.AICallUsage+1), true, nil
}

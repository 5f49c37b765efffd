package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novaai/backend/internal/app/service/webhooklog"
	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/types"
)

// Service turns provider notifications into idempotent record updates.
// Every transition tolerates at-least-once delivery: replaying the same
// event payload leaves the records in the same final state.
type Service struct {
	db   *gorm.DB
	log  *zap.SugaredLogger
	logs *webhooklog.Service
}

func New(db *gorm.DB, log *zap.SugaredLogger, logs *webhooklog.Service) *Service {
	return &Service{db: db, log: log, logs: logs}
}

// Handle processes one raw webhook body. It never returns an error;
// internal failures are logged and the caller acknowledges regardless,
// so the provider does not retry-storm us.
func (s *Service) Handle(ctx context.Context, raw []byte) {
	log := logctx.FromCtx(ctx, s.log)

	event, err := ParseEvent(raw)
	if err != nil {
		log.Errorf("failed to parse webhook body: %v", err)
		s.logs.Save(ctx, &models.WebhookLog{EventType: "unparseable", Data: datatypes.JSON(raw)})
		return
	}

	s.logs.Save(ctx, &models.WebhookLog{
		EventType:   string(event.EventType),
		PaymentKey:  event.Data.PaymentKey,
		CustomerKey: event.Data.CustomerKey,
		Data:        datatypes.JSON(raw),
	})

	switch event.EventType {
	case types.WebhookEventPaymentStatusChanged:
		err = s.handlePaymentStatusChanged(ctx, &event.Data)
	case types.WebhookEventBillingDeleted:
		err = s.handleBillingDeleted(ctx, &event.Data)
	case types.WebhookEventCancelStatusChanged, types.WebhookEventDepositCallback:
		log.Infof("webhook event logged only, event_type=%s, payment_key=%s", event.EventType, event.Data.PaymentKey)
	default:
		log.Warnf("unknown webhook event type %q, ignored", event.EventType)
	}
	if err != nil {
		log.Errorf("webhook processing failed, event_type=%s, payment_key=%s: %v",
			event.EventType, event.Data.PaymentKey, err)
	}
}

func (s *Service) handlePaymentStatusChanged(ctx context.Context, data *EventData) error {
	log := logctx.FromCtx(ctx, s.log)

	userID, err := types.ParseCustomerKey(data.CustomerKey)
	if err != nil {
		log.Warnf("cannot resolve user for webhook, payment_key=%s: %v", data.PaymentKey, err)
		return nil
	}

	switch data.Status {
	case types.PaymentStatusDone:
		return s.applyDone(ctx, userID, data)
	case types.PaymentStatusCanceled, types.PaymentStatusPartialCanceled:
		return s.applyCanceled(ctx, userID, data)
	case types.PaymentStatusAborted, types.PaymentStatusExpired:
		log.Infof("payment %s for user %s, payment_key=%s, no state change", data.Status, userID, data.PaymentKey)
		return nil
	default:
		log.Warnf("unknown payment status %q, payment_key=%s, ignored", data.Status, data.PaymentKey)
		return nil
	}
}

func (s *Service) applyDone(ctx context.Context, userID string, data *EventData) error {
	payment := PaymentFromEvent(userID, data)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "payment_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "order_id", "order_name", "amount", "method", "status", "approved_at", "card", "updated_at",
		}),
	}).Create(payment).Error
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	if err := s.updateSubscription(ctx, userID, func(sub *models.Subscription, now time.Time) bool {
		return ApplyPaymentDone(sub, data.OrderID, now)
	}); err != nil {
		return err
	}

	s.logs.MarkProcessed(ctx, data.PaymentKey)
	return nil
}

func (s *Service) applyCanceled(ctx context.Context, userID string, data *EventData) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_key = ?", data.PaymentKey).
		Updates(map[string]any{
			"status":      types.PaymentStatusCanceled,
			"cancels":     datatypes.JSON(data.Cancels),
			"canceled_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		logctx.FromCtx(ctx, s.log).Infof("cancel for unknown payment_key=%s, no-op", data.PaymentKey)
		return nil
	}

	return s.updateSubscription(ctx, userID, func(sub *models.Subscription, now time.Time) bool {
		return ApplyPaymentCanceled(sub, data.OrderID, now)
	})
}

func (s *Service) handleBillingDeleted(ctx context.Context, data *EventData) error {
	userID, err := types.ParseCustomerKey(data.CustomerKey)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnf("cannot resolve user for billing deletion: %v", err)
		return nil
	}
	return s.updateSubscription(ctx, userID, func(sub *models.Subscription, now time.Time) bool {
		return ApplyBillingDeleted(sub, data.BillingKey, now)
	})
}

// updateSubscription loads the user, applies a transition to the
// subscription sub-object and writes it back when the transition
// reports a change. Missing users are logged and skipped.
func (s *Service) updateSubscription(ctx context.Context, userID string, apply func(*models.Subscription, time.Time) bool) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logctx.FromCtx(ctx, s.log).Warnf("webhook for unknown user %s, skipped", userID)
			return nil
		}
		return fmt.Errorf("failed to load user %s: %w", userID, err)
	}

	sub := user.GetSubscription()
	if !apply(sub, time.Now()) {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("subscription", datatypes.NewJSONType(sub)).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription for user %s: %w", userID, err)
	}
	return nil
}

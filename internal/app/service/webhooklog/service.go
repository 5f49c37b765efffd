package webhooklog

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/tool"
)

// markProcessedRetryDelay gives the async audit insert time to land
// before the second lookup.
const markProcessedRetryDelay = 100 * time.Millisecond

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook audit entry. Nil input is
// ignored. Failures are logged only; audit logging never blocks or
// aborts event processing.
func (s *Service) Save(ctx context.Context, entry *models.WebhookLog) {
	go func() {
		if entry == nil {
			return
		}
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		if entry.ReceivedAt.IsZero() {
			entry.ReceivedAt = time.Now()
		}
		if err := s.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook log: %v", err)
		}
	}()
}

// MarkProcessed flags the most recent audit entry for a payment key as
// handled. The audit insert runs asynchronously and may not have landed
// yet, so a miss is retried once after a short wait. Best-effort,
// errors are logged only.
func (s *Service) MarkProcessed(ctx context.Context, paymentKey string) {
	if paymentKey == "" {
		return
	}
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			time.Sleep(markProcessedRetryDelay)
		}
		now := time.Now()
		sub := s.db.Model(&models.WebhookLog{}).
			Select("id").
			Where("payment_key = ?", paymentKey).
			Order("received_at DESC").
			Limit(1)
		res := s.db.Model(&models.WebhookLog{}).
			Where("id = (?)", sub).
			Updates(map[string]any{"processed": true, "processed_at": now})
		if res.Error != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to mark webhook log processed, payment_key=%s: %v", paymentKey, res.Error)
			return
		}
		if res.RowsAffected > 0 {
			return
		}
	}
	logctx.FromCtx(ctx, s.log).Warnf("no webhook log entry to mark processed, payment_key=%s", paymentKey)
}

var Module = fx.Options(
	fx.Provide(New),
)

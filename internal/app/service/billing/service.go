package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novaai/backend/internal/app/service/webhook"
	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/internal/platform/payments"
	cfgpkg "github.com/novaai/backend/pkg/config"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/tool"
	"github.com/novaai/backend/pkg/types"
)

// Gateway is the slice of the payment client the processor needs.
type Gateway interface {
	ChargeBillingKey(ctx context.Context, req *payments.ChargeRequest) (*payments.ChargeResult, error)
}

// Service charges every due recurring subscription once per run. One
// user's failure never blocks the rest; failures are aggregated into
// the run summary.
type Service struct {
	db        *gorm.DB
	log       *zap.SugaredLogger
	gateway   Gateway
	notifyURL string
}

func New(db *gorm.DB, log *zap.SugaredLogger, gateway *payments.Client, cfg *cfgpkg.Config) *Service {
	return &Service{db: db, log: log, gateway: gateway, notifyURL: cfg.Billing.NotifyURL}
}

// Result is the outcome of one user's charge attempt.
type Result struct {
	UserID  string `json:"userId"`
	Success bool   `json:"success"`
	Amount  int64  `json:"amount,omitempty"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Summary is the operational report for one run.
type Summary struct {
	Timestamp      time.Time `json:"timestamp"`
	TotalProcessed int       `json:"totalProcessed"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	TotalAmount    int64     `json:"totalAmount"`
	FailedUsers    []Result  `json:"failedUsers"`
}

// Summarize aggregates per-user results into a run summary.
func Summarize(ts time.Time, results []Result) *Summary {
	summary := &Summary{
		Timestamp:      ts,
		TotalProcessed: len(results),
		FailedUsers:    []Result{},
	}
	for _, r := range results {
		if r.Success {
			summary.Successful++
			summary.TotalAmount += r.Amount
		} else {
			summary.Failed++
			summary.FailedUsers = append(summary.FailedUsers, r)
		}
	}
	return summary
}

// Run finds every subscription due at now, charges each stored payment
// instrument and reports the aggregate summary. The summary is also
// forwarded to the notification channel, best-effort.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	now := time.Now()
	log := logctx.FromCtx(ctx, s.log)

	users, err := s.dueUsers(ctx, now)
	if err != nil {
		return nil, err
	}
	log.Infof("billing run started, due_users=%d", len(users))

	results := make([]Result, 0, len(users))
	for _, user := range users {
		results = append(results, s.chargeUser(ctx, user, now))
	}

	summary := Summarize(now, results)
	log.Infof("billing run finished, processed=%d, successful=%d, failed=%d, total_amount=%d",
		summary.TotalProcessed, summary.Successful, summary.Failed, summary.TotalAmount)
	s.notify(ctx, summary)
	return summary, nil
}

// dueUsers selects users whose recurring subscription is due. The
// subscription lives in a JSONB column; nextBillingDate is stored as
// RFC3339 and castable to timestamptz.
func (s *Service) dueUsers(ctx context.Context, now time.Time) ([]*models.User, error) {
	var users []*models.User
	err := s.db.WithContext(ctx).
		Where("subscription ->> 'isRecurring' = 'true'").
		Where("(subscription ->> 'nextBillingDate')::timestamptz <= ?", now).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due subscriptions: %w", err)
	}
	return users, nil
}

func (s *Service) chargeUser(ctx context.Context, user *models.User, now time.Time) Result {
	log := logctx.FromCtx(ctx, s.log)
	sub := user.GetSubscription()

	if sub.BillingKey == "" || sub.CustomerKey == "" {
		err := fmt.Errorf("missing payment instrument")
		s.recordFailure(ctx, user, sub, err)
		return Result{UserID: user.ID, Error: err.Error()}
	}

	orderID := tool.GenerateOrderID()
	orderName := sub.OrderName
	if orderName == "" {
		orderName = fmt.Sprintf("Nova %s (%s)", sub.Plan, sub.BillingCycle)
	}

	charged, err := s.gateway.ChargeBillingKey(ctx, &payments.ChargeRequest{
		BillingKey:  sub.BillingKey,
		CustomerKey: sub.CustomerKey,
		Amount:      sub.Amount,
		OrderID:     orderID,
		OrderName:   orderName,
	})
	if err != nil {
		log.Errorf("charge failed, user_id=%s: %v", user.ID, err)
		s.recordFailure(ctx, user, sub, err)
		return Result{UserID: user.ID, Error: err.Error()}
	}

	if err := s.recordSuccess(ctx, user, sub, charged, orderID, now); err != nil {
		// the charge went through; surface the bookkeeping failure but
		// count the user as charged so they are not double-billed
		log.Errorf("charge succeeded but bookkeeping failed, user_id=%s: %v", user.ID, err)
	}
	return Result{UserID: user.ID, Success: true, Amount: sub.Amount, OrderID: orderID}
}

func (s *Service) recordSuccess(ctx context.Context, user *models.User, sub *models.Subscription, charged *payments.ChargeResult, orderID string, now time.Time) error {
	payment := &models.Payment{
		ID:         tool.GenerateUUIDV7(),
		UserID:     user.ID,
		PaymentKey: charged.PaymentKey,
		OrderID:    orderID,
		OrderName:  charged.OrderName,
		Amount:     charged.TotalAmount,
		Method:     charged.Method,
		Status:     types.PaymentStatus(charged.Status),
		Card:       datatypes.JSON(charged.Card),
	}
	if at, err := time.Parse(time.RFC3339, charged.ApprovedAt); err == nil {
		payment.ApprovedAt = &at
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "payment_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "order_id", "order_name", "amount", "method", "status", "approved_at", "card", "updated_at",
		}),
	}).Create(payment).Error
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}

	webhook.ApplyPaymentDone(sub, orderID, now)
	return s.saveSubscription(ctx, user.ID, sub)
}

func (s *Service) recordFailure(ctx context.Context, user *models.User, sub *models.Subscription, cause error) {
	sub.FailureCount++
	sub.LastFailureReason = cause.Error()
	if err := s.saveSubscription(ctx, user.ID, sub); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to record charge failure, user_id=%s: %v", user.ID, err)
	}
}

func (s *Service) saveSubscription(ctx context.Context, userID string, sub *models.Subscription) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("subscription", datatypes.NewJSONType(sub)).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription for user %s: %w", userID, err)
	}
	return nil
}

// notify forwards the run summary to the operations channel. Fire and
// forget; a delivery failure never fails the run.
func (s *Service) notify(ctx context.Context, summary *Summary) {
	if s.notifyURL == "" {
		return
	}
	go func() {
		body, err := json.Marshal(summary)
		if err != nil {
			return
		}
		resp, err := http.Post(s.notifyURL, "application/json", bytes.NewReader(body))
		if err != nil {
			logctx.FromCtx(ctx, s.log).Warnf("failed to deliver billing summary: %v", err)
			return
		}
		resp.Body.Close()
	}()
}

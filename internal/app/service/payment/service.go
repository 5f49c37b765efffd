package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/internal/platform/payments"
	"github.com/novaai/backend/pkg/apperr"
	"github.com/novaai/backend/pkg/logctx"
	"github.com/novaai/backend/pkg/types"
)

// Service covers the admin-facing payment operations: paginated
// listing and explicit deletion. These run outside the webhook state
// machine.
type Service struct {
	db      *gorm.DB
	log     *zap.SugaredLogger
	gateway *payments.Client
}

func New(db *gorm.DB, log *zap.SugaredLogger, gateway *payments.Client) *Service {
	return &Service{db: db, log: log, gateway: gateway}
}

type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// filtersAnd joins request filters into one WHERE expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range w.filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}

// ScanPayments implements the paginated admin listing with filters.
func (s *Service) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment

	q := tx.Limit(req.Size)

	if req.From > 0 {
		q = q.Offset(req.From)
	}

	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}

// Delete removes a payment record. When cancelAtProvider is set the
// gateway cancellation runs first, best-effort: a provider failure is
// logged and the local delete still proceeds.
func (s *Service) Delete(ctx context.Context, paymentID string, cancelAtProvider bool, reason string) error {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: payment %s", apperr.ErrNotFound, paymentID)
		}
		return fmt.Errorf("failed to load payment: %w", err)
	}

	if cancelAtProvider && payment.PaymentKey != "" {
		if reason == "" {
			reason = "admin delete"
		}
		if err := s.gateway.CancelPayment(ctx, payment.PaymentKey, reason); err != nil {
			logctx.FromCtx(ctx, s.log).Warnf("provider cancel failed for payment %s: %v", paymentID, err)
		}
	}

	if err := s.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", paymentID).Error; err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infof("payment deleted, payment_id=%s, payment_key=%s", paymentID, payment.PaymentKey)
	return nil
}

var Module = fx.Options(
	fx.Provide(New),
)

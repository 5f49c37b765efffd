package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novaai/backend/internal/models"
	"github.com/novaai/backend/pkg/types"
)

type StatisticType string

const (
	// Payment flow
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyRevenue      StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue      StatisticType = "total_revenue"
	StatisticTypeDailyCancelCount  StatisticType = "daily_cancel_count"

	// Subscription state
	StatisticTypeActiveSubscriptionCount StatisticType = "active_subscription_count"
)

var statisticTypes = []StatisticType{
	StatisticTypeDailyPaymentCount,
	StatisticTypeDailyRevenue,
	StatisticTypeTotalRevenue,
	StatisticTypeDailyCancelCount,
	StatisticTypeActiveSubscriptionCount,
}

type PaymentStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type PaymentStatisticRequest struct {
	Filters   []*types.CommonFilter       `json:"filters"`
	DataItems []*PaymentStatisticDataItem `json:"data_items"`
}

// Build composes a WHERE clause from the request filters.
func (f *PaymentStatisticRequest) Build(builder clause.Builder) {
	if f == nil || len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

type PaymentStatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type PaymentStatisticResponse struct {
	DataItems map[StatisticType][]PaymentStatisticResponseDataItem `json:"data_items"`
}

// Service answers the admin dashboard's statistic queries.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyPaymentCount(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.PaymentStatusDone).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, method AS label, sum(amount) as value").
		Where("status = ?", types.PaymentStatusDone).
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("method").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalRevenue(ctx context.Context, _ *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH min_max_dates AS (
    SELECT MIN(DATE(created_at)) as min_date, MAX(DATE(created_at)) as max_date
    FROM payments WHERE status = ?
),
distinct_dates AS (
    SELECT generate_series(min_date, max_date, '1 day'::interval) as date FROM min_max_dates
),
daily AS (
    SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, COALESCE(SUM(p.amount), 0) as value
    FROM distinct_dates d
    LEFT JOIN payments p
      ON TO_CHAR(p.created_at, 'YYYY-MM-DD') = TO_CHAR(d.date, 'YYYY-MM-DD')
     AND p.status = ?
    GROUP BY d.date
)
SELECT d.date as date, SUM(s.value) as value
FROM daily d
LEFT JOIN daily s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`, types.PaymentStatusDone, types.PaymentStatusDone).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyCancelCount(ctx context.Context, request *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(canceled_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status IN ?", []types.PaymentStatus{types.PaymentStatusCanceled, types.PaymentStatusPartialCanceled}).
		Where("canceled_at IS NOT NULL").
		Where(clause.Where{Exprs: []clause.Expression{request}}).
		Group("TO_CHAR(canceled_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveSubscriptionCount(ctx context.Context, _ *PaymentStatisticRequest) ([]PaymentStatisticResponseDataItem, error) {
	var results []PaymentStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table((models.User{}).TableName()).
		Select("subscription ->> 'plan' as label, count(*) as value").
		Where("subscription ->> 'status' = ?", types.SubscriptionStatusActive).
		Group("subscription ->> 'plan'").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest, dataItem *PaymentStatisticDataItem) ([]PaymentStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, request)
	case StatisticTypeDailyCancelCount:
		return s.getDailyCancelCount(ctx, request)
	case StatisticTypeActiveSubscriptionCount:
		return s.getActiveSubscriptionCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetPaymentStatistic resolves all requested data items concurrently;
// the first query error fails the whole request.
func (s *Service) GetPaymentStatistic(ctx context.Context, request *PaymentStatisticRequest) (*PaymentStatisticResponse, error) {
	for _, item := range request.DataItems {
		if !lo.Contains(statisticTypes, item.ID) {
			return nil, fmt.Errorf("invalid data item id: %s", item.ID)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []PaymentStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *PaymentStatisticDataItem) {
			defer wg.Done()
			res, err := s.getPaymentStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []PaymentStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	// errChan closes only after every worker is done, so draining it
	// first cannot lose a buffered result from resChan.
	for err := range errChan {
		return nil, err
	}
	results := make(map[StatisticType][]PaymentStatisticResponseDataItem, len(request.DataItems))
	for entry := range resChan {
		results[entry.Key] = entry.Value
	}
	return &PaymentStatisticResponse{DataItems: results}, nil
}

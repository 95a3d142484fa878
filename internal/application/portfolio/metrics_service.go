package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentfolio/backend/internal/domain/leasing"
	"github.com/rentfolio/backend/internal/domain/portfolio"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DashboardSummary aggregates portfolio-wide occupancy and income figures.
// These are read-side conveniences: a metric that cannot be computed degrades
// to zero instead of failing the dashboard.
type DashboardSummary struct {
	TotalProperties int64           `json:"total_properties"`
	TotalUnits      int64           `json:"total_units"`
	ActiveLeases    int64           `json:"active_leases"`
	OccupancyRate   decimal.Decimal `json:"occupancy_rate"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	OverduePayments int64           `json:"overdue_payments"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// SummaryCache caches computed dashboard summaries
type SummaryCache interface {
	Get(ctx context.Context, key string) (*DashboardSummary, error)
	Set(ctx context.Context, key string, summary *DashboardSummary, ttl time.Duration) error
}

// SummaryCacheTTL bounds staleness of the cached dashboard
const SummaryCacheTTL = 5 * time.Minute

// MetricsService computes occupancy and income aggregates over the portfolio
type MetricsService struct {
	propertyRepo portfolio.PropertyRepository
	leaseRepo    leasing.LeaseRepository
	paymentRepo  leasing.RentPaymentRepository
	cache        SummaryCache
	logger       *zap.Logger
	now          func() time.Time
}

// NewMetricsService creates a new MetricsService. The cache is optional.
func NewMetricsService(
	propertyRepo portfolio.PropertyRepository,
	leaseRepo leasing.LeaseRepository,
	paymentRepo leasing.RentPaymentRepository,
	cache SummaryCache,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		propertyRepo: propertyRepo,
		leaseRepo:    leaseRepo,
		paymentRepo:  paymentRepo,
		cache:        cache,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the service clock for tests
func (s *MetricsService) WithClock(now func() time.Time) *MetricsService {
	s.now = now
	return s
}

// OccupancyRate returns occupied units over total units as a percentage,
// clamped to [0, 100] and rounded to two decimals. A lease counts as
// occupying only while ACTIVE and covering today. Zero total units yields 0.
// A non-nil ownerID restricts the figure to that owner's properties.
func (s *MetricsService) OccupancyRate(ctx context.Context, ownerID *uuid.UUID) (decimal.Decimal, error) {
	if ownerID != nil {
		fig, err := s.collectOwnerFigures(ctx, *ownerID)
		if err != nil {
			return decimal.Zero, err
		}
		return occupancyPct(fig.active, fig.totalUnits), nil
	}

	totalUnits, err := s.propertyRepo.SumTotalUnits(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}

	active, err := s.leaseRepo.FindCurrentlyActive(ctx, s.now())
	if err != nil {
		return decimal.Zero, err
	}
	return occupancyPct(int64(len(active)), totalUnits), nil
}

// occupancyPct converts an active-lease count over a unit count into a
// percentage rounded to two decimals, clamped to [0, 100]
func occupancyPct(active, totalUnits int64) decimal.Decimal {
	if totalUnits <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromInt(active).
		Div(decimal.NewFromInt(totalUnits)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	if rate.GreaterThan(decimal.NewFromInt(100)) {
		// More active leases than units: dirty data, clamp rather than report >100%
		rate = decimal.NewFromInt(100)
	}
	return rate
}

// MonthlyIncome sums the monthly rent of currently active leases. A failure
// degrades to zero so dashboards render; the error is logged, not returned.
func (s *MetricsService) MonthlyIncome(ctx context.Context) decimal.Decimal {
	active, err := s.leaseRepo.FindCurrentlyActive(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to compute monthly income, reporting zero", zap.Error(err))
		return decimal.Zero
	}

	income := decimal.Zero
	for i := range active {
		income = income.Add(active[i].MonthlyRent)
	}
	return income
}

// PropertyMetrics reports occupancy and income for a single property
type PropertyMetrics struct {
	PropertyID    uuid.UUID       `json:"property_id"`
	TotalUnits    int             `json:"total_units"`
	ActiveLeases  int             `json:"active_leases"`
	OccupancyRate decimal.Decimal `json:"occupancy_rate"`
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// ForProperty computes occupancy and income for one property, with the same
// clamping and zero-unit handling as the portfolio-wide rate
func (s *MetricsService) ForProperty(ctx context.Context, propertyID uuid.UUID) (*PropertyMetrics, error) {
	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	leases, err := s.leaseRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	active := 0
	income := decimal.Zero
	for i := range leases {
		if leases[i].IsCurrentlyActive(today) {
			active++
			income = income.Add(leases[i].MonthlyRent)
		}
	}

	return &PropertyMetrics{
		PropertyID:    property.ID,
		TotalUnits:    property.TotalUnits,
		ActiveLeases:  active,
		OccupancyRate: occupancyPct(int64(active), int64(property.TotalUnits)),
		MonthlyIncome: income,
	}, nil
}

// ownerFigures holds the counts collected in one pass over an owner's
// properties and their leases
type ownerFigures struct {
	properties int64
	totalUnits int64
	active     int64
	income     decimal.Decimal
	leaseIDs   map[uuid.UUID]struct{}
}

func (s *MetricsService) collectOwnerFigures(ctx context.Context, ownerID uuid.UUID) (*ownerFigures, error) {
	properties, err := s.propertyRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	fig := &ownerFigures{
		properties: int64(len(properties)),
		income:     decimal.Zero,
		leaseIDs:   make(map[uuid.UUID]struct{}),
	}
	for i := range properties {
		fig.totalUnits += int64(properties[i].TotalUnits)

		leases, err := s.leaseRepo.FindByProperty(ctx, properties[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range leases {
			fig.leaseIDs[leases[j].ID] = struct{}{}
			if leases[j].IsCurrentlyActive(today) {
				fig.active++
				fig.income = fig.income.Add(leases[j].MonthlyRent)
			}
		}
	}
	return fig, nil
}

// Summary computes the dashboard summary, serving a cached copy when one is
// fresh. A non-nil ownerID scopes every figure to that owner's properties;
// nil covers the whole portfolio.
func (s *MetricsService) Summary(ctx context.Context, ownerID *uuid.UUID) (*DashboardSummary, error) {
	cacheKey := "dashboard:summary"
	if ownerID != nil {
		cacheKey += ":" + ownerID.String()
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
			return cached, nil
		}
	}

	var summary *DashboardSummary
	var err error
	if ownerID != nil {
		summary, err = s.ownerSummary(ctx, *ownerID)
	} else {
		summary, err = s.portfolioSummary(ctx)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, SummaryCacheTTL); err != nil {
			s.logger.Warn("Failed to cache dashboard summary", zap.Error(err))
		}
	}

	return summary, nil
}

func (s *MetricsService) portfolioSummary(ctx context.Context) (*DashboardSummary, error) {
	totalProperties, err := s.propertyRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUnits, err := s.propertyRepo.SumTotalUnits(ctx, nil)
	if err != nil {
		return nil, err
	}
	activeLeases, err := s.leaseRepo.CountByStatus(ctx, leasing.LeaseStatusActive)
	if err != nil {
		return nil, err
	}
	occupancy, err := s.OccupancyRate(ctx, nil)
	if err != nil {
		return nil, err
	}
	overdue, err := s.paymentRepo.CountByStatus(ctx, leasing.PaymentStatusOverdue)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalProperties: totalProperties,
		TotalUnits:      totalUnits,
		ActiveLeases:    activeLeases,
		OccupancyRate:   occupancy,
		MonthlyIncome:   s.MonthlyIncome(ctx),
		OverduePayments: overdue,
		ComputedAt:      s.now(),
	}, nil
}

func (s *MetricsService) ownerSummary(ctx context.Context, ownerID uuid.UUID) (*DashboardSummary, error) {
	fig, err := s.collectOwnerFigures(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Overdue payments carry no owner column; filter the overdue set against
	// the owner's leases.
	overduePayments, err := s.paymentRepo.FindOverdue(ctx)
	if err != nil {
		return nil, err
	}
	var overdue int64
	for i := range overduePayments {
		if _, ok := fig.leaseIDs[overduePayments[i].LeaseID]; ok {
			overdue++
		}
	}

	return &DashboardSummary{
		TotalProperties: fig.properties,
		TotalUnits:      fig.totalUnits,
		ActiveLeases:    fig.active,
		OccupancyRate:   occupancyPct(fig.active, fig.totalUnits),
		MonthlyIncome:   fig.income,
		OverduePayments: overdue,
		ComputedAt:      s.now(),
	}, nil
}

// Package dashboard assembles the landing page figures. Every number is
// computed over the records the principal may see.
package dashboard

import (
	"context"
	"sort"
	"time"

	appidentity "github.com/farmsaathi/backend/internal/application/identity"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/domain/finance"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dashboard windows
const (
	HarvestWindowDays = 30
	HarvestLimit      = 5
	TrendMonths       = 6
	RecentUsers       = 5
)

// LowStockCounter counts visible low-stock inventory items
type LowStockCounter interface {
	CountLowStock(ctx context.Context, pred access.Predicate) (int64, error)
}

// Repositories are the sources the dashboard reads
type Repositories struct {
	Crops        farm.CropRepository
	Livestock    farm.LivestockRepository
	Employees    farm.EmployeeRepository
	Inventory    LowStockCounter
	Transactions finance.TransactionRepository
	Users        identity.UserRepository
}

// Service builds dashboards
type Service struct {
	repos Repositories
	now   func() time.Time
}

// NewService creates a new dashboard Service
func NewService(repos Repositories) *Service {
	return &Service{
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CropFigures summarizes active crops
type CropFigures struct {
	Active    int64           `json:"active"`
	TotalArea decimal.Decimal `json:"total_area_hectares"`
}

// LivestockFigures summarizes active livestock
type LivestockFigures struct {
	HeadCount int64 `json:"head_count"`
	Types     int64 `json:"types"`
}

// Harvest is an upcoming harvest
type Harvest struct {
	ID           uuid.UUID       `json:"id"`
	CropName     string          `json:"crop_name"`
	CropType     string          `json:"crop_type"`
	AreaHectares decimal.Decimal `json:"area_hectares"`
	HarvestDate  time.Time       `json:"harvest_date"`
}

// FinanceFigures is income against expense
type FinanceFigures struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

// TrendPoint is one month of the income and expense trend
type TrendPoint struct {
	Month   string          `json:"month"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the expense of one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// AdminOverview is shown to admins only
type AdminOverview struct {
	UsersByRole map[string]int64           `json:"users_by_role"`
	TotalUsers  int64                      `json:"total_users"`
	RecentUsers []appidentity.UserResponse `json:"recent_users"`
}

// Response is the whole dashboard
type Response struct {
	Crops             CropFigures      `json:"crops"`
	Livestock         LivestockFigures `json:"livestock"`
	ActiveEmployees   int64            `json:"active_employees"`
	LowStockItems     int64            `json:"low_stock_items"`
	UpcomingHarvests  []Harvest        `json:"upcoming_harvests"`
	Finance           FinanceFigures   `json:"finance"`
	MonthlyTrend      []TrendPoint     `json:"monthly_trend"`
	ExpenseByCategory []CategoryTotal  `json:"expense_by_category"`
	Admin             *AdminOverview   `json:"admin,omitempty"`
}

// Get builds the dashboard of p. The figures are independent reads and run
// concurrently; the first failure cancels the rest.
func (s *Service) Get(ctx context.Context, p access.Principal) (*Response, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "dashboard", "get")
	defer span.End()

	pred := access.VisibilityPredicate(p)
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	resp := &Response{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repos.Crops.Count(ctx, pred, map[string]interface{}{"status": string(farm.CropStatusActive)})
		if err != nil {
			return err
		}
		area, err := s.repos.Crops.SumActiveArea(ctx, pred)
		if err != nil {
			return err
		}
		resp.Crops = CropFigures{Active: n, TotalArea: area}
		return nil
	})
	g.Go(func() error {
		crops, err := s.repos.Crops.FindHarvestsDue(ctx, pred, today, today.AddDate(0, 0, HarvestWindowDays), HarvestLimit)
		if err != nil {
			return err
		}
		resp.UpcomingHarvests = make([]Harvest, 0, len(crops))
		for _, c := range crops {
			h := Harvest{ID: c.ID, CropName: c.CropName, CropType: c.CropType, AreaHectares: c.AreaHectares}
			if c.HarvestDate != nil {
				h.HarvestDate = *c.HarvestDate
			}
			resp.UpcomingHarvests = append(resp.UpcomingHarvests, h)
		}
		return nil
	})
	g.Go(func() error {
		head, types, err := s.repos.Livestock.HeadCount(ctx, pred)
		resp.Livestock = LivestockFigures{HeadCount: head, Types: types}
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Employees.Count(ctx, pred, map[string]interface{}{"status": string(farm.EmployeeStatusActive)})
		resp.ActiveEmployees = n
		return err
	})
	g.Go(func() error {
		n, err := s.repos.Inventory.CountLowStock(ctx, pred)
		resp.LowStockItems = n
		return err
	})
	g.Go(func() error {
		totals, err := s.repos.Transactions.Totals(ctx, pred, nil, nil)
		resp.Finance = FinanceFigures{TotalIncome: totals.Income, TotalExpense: totals.Expense, Net: totals.Net()}
		return err
	})
	g.Go(func() error {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(TrendMonths - 1), 0)
		entries, err := s.repos.Transactions.EntriesSince(ctx, pred, start)
		if err != nil {
			return err
		}
		months := finance.MonthlyTrend(entries, now, TrendMonths)
		resp.MonthlyTrend = make([]TrendPoint, len(months))
		for i, m := range months {
			label := m.Month
			if t, err := time.Parse("2006-01", m.Month); err == nil {
				label = t.Format("Jan 2006")
			}
			resp.MonthlyTrend[i] = TrendPoint{Month: m.Month, Label: label, Income: m.Income, Expense: m.Expense}
		}
		return nil
	})
	g.Go(func() error {
		totals, err := s.repos.Transactions.TotalsByCategory(ctx, pred, finance.TransactionExpense)
		if err != nil {
			return err
		}
		resp.ExpenseByCategory = mergeCategories(totals)
		return nil
	})
	if p.IsAdmin() && s.repos.Users != nil {
		g.Go(func() error {
			overview, err := s.adminOverview(ctx)
			resp.Admin = overview
			return err
		})
	}

	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return resp, nil
}

// mergeCategories title-cases free-text categories so "animal feed" and
// "Animal Feed" are reported together, keeping the largest first. A Caser
// keeps state between calls, so each call builds its own.
func mergeCategories(totals []finance.CategoryTotal) []CategoryTotal {
	title := cases.Title(language.English)
	out := make([]CategoryTotal, 0, len(totals))
	index := make(map[string]int, len(totals))
	for _, t := range totals {
		label := title.String(t.Category)
		if i, ok := index[label]; ok {
			out[i].Total = out[i].Total.Add(t.Total)
			continue
		}
		index[label] = len(out)
		out = append(out, CategoryTotal{Category: label, Total: t.Total})
	}
	// merging can reorder totals
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

func (s *Service) adminOverview(ctx context.Context) (*AdminOverview, error) {
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	overview := &AdminOverview{UsersByRole: make(map[string]int64, len(byRole))}
	for role, n := range byRole {
		overview.UsersByRole[string(role)] = n
		overview.TotalUsers += n
	}

	recent, err := s.repos.Users.FindRecent(ctx, RecentUsers)
	if err != nil {
		return nil, err
	}
	overview.RecentUsers = make([]appidentity.UserResponse, len(recent))
	for i, u := range recent {
		overview.RecentUsers[i] = appidentity.ToUserResponse(u)
	}
	return overview, nil
}

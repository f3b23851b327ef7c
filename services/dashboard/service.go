package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lakshyafoods/storefront/models"
	"github.com/lakshyafoods/storefront/repositories"
	"go.uber.org/zap"
)

const (
	// GrowthWindow is the lookback used for the "this month" counters
	GrowthWindow = 30 * 24 * time.Hour

	// RecentLimit is the number of recent users and inquiries returned
	RecentLimit = 5
)

// Stats are the headline counters of the admin dashboard
type Stats struct {
	TotalUsers            int `json:"totalUsers"`
	TotalInquiries        int `json:"totalInquiries"`
	NewInquiries          int `json:"newInquiries"`
	TotalOrders           int `json:"totalOrders"`
	NewUsersThisMonth     int `json:"newUsersThisMonth"`
	NewInquiriesThisMonth int `json:"newInquiriesThisMonth"`
	UserGrowth            int `json:"userGrowth"`
	InquiryGrowth         int `json:"inquiryGrowth"`
}

// RecentUser is the dashboard projection of a user
type RecentUser struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	CreatedAt time.Time       `json:"createdAt"`
	Role      models.UserRole `json:"role"`
}

// RecentInquiry is the dashboard projection of an inquiry
type RecentInquiry struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Status    models.InquiryStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

// RecentActivity lists the newest users and inquiries
type RecentActivity struct {
	Users     []RecentUser    `json:"users"`
	Inquiries []RecentInquiry `json:"inquiries"`
}

// Summary is the admin dashboard payload
type Summary struct {
	Stats          Stats          `json:"stats"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

// DashboardService aggregates storefront activity for admins
type DashboardService struct {
	users     repositories.UserRepository
	orders    repositories.OrderRepository
	inquiries repositories.InquiryRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	users repositories.UserRepository,
	orders repositories.OrderRepository,
	inquiries repositories.InquiryRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		users:     users,
		orders:    orders,
		inquiries: inquiries,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary collects counters and recent activity
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	since := s.now().UTC().Add(-GrowthWindow)

	var (
		stats Stats
		err   error
	)
	if stats.TotalUsers, err = s.users.Count(ctx, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.NewUsersThisMonth, err = s.users.Count(ctx, since); err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}
	if stats.TotalInquiries, err = s.inquiries.Count(ctx, "", time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count inquiries: %w", err)
	}
	if stats.NewInquiries, err = s.inquiries.Count(ctx, models.InquiryStatusNew, time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to count new inquiries: %w", err)
	}
	if stats.NewInquiriesThisMonth, err = s.inquiries.Count(ctx, "", since); err != nil {
		return nil, fmt.Errorf("failed to count recent inquiries: %w", err)
	}
	if stats.TotalOrders, err = s.orders.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	stats.UserGrowth = GrowthPercent(stats.NewUsersThisMonth, stats.TotalUsers)
	stats.InquiryGrowth = GrowthPercent(stats.NewInquiriesThisMonth, stats.TotalInquiries)

	users, err := s.users.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent users: %w", err)
	}
	inquiries, err := s.inquiries.Recent(ctx, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent inquiries: %w", err)
	}

	activity := RecentActivity{
		Users:     make([]RecentUser, 0, len(users)),
		Inquiries: make([]RecentInquiry, 0, len(inquiries)),
	}
	for _, u := range users {
		activity.Users = append(activity.Users, RecentUser{
			ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, Role: u.Role,
		})
	}
	for _, i := range inquiries {
		activity.Inquiries = append(activity.Inquiries, RecentInquiry{
			ID: i.ID, Name: i.Name, Email: i.Email, Status: i.Status, CreatedAt: i.CreatedAt,
		})
	}

	return &Summary{Stats: stats, RecentActivity: activity}, nil
}

// GrowthPercent returns recent as a whole percentage of total, or 0 when
// total is not positive.
func GrowthPercent(recent, total int) int {
	if total <= 0 || recent <= 0 {
		return 0
	}
	return int(math.Round(float64(recent) / float64(total) * 100))
}

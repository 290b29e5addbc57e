package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"milk-delivery-api/models"
	"milk-delivery-api/pricing"
)

type Overview struct {
	TotalCustomers int64            `json:"total_customers"`
	TotalWorkers   int64            `json:"total_workers"`
	TodayOrders    int64            `json:"today_orders"`
	MonthlyRevenue float64          `json:"monthly_revenue"`
	StatusCounts   map[string]int64 `json:"status_counts"`
}

// DeliveryStats are the per-day counters shown on the delivery dashboard.
type DeliveryStats struct {
	Date      string `json:"date"`
	Total     int64  `json:"total"`
	Pending   int64  `json:"pending"`
	Delivered int64  `json:"delivered"`
	Missed    int64  `json:"missed"`
	Cancelled int64  `json:"cancelled"`
	Liters    int64  `json:"liters"`
}

type AnalyticsService struct {
	db        *gorm.DB
	varieties VarietyResolver
}

func NewAnalyticsService(db *gorm.DB, varieties VarietyResolver) *AnalyticsService {
	return &AnalyticsService{db: db, varieties: varieties}
}

// Overview aggregates headline numbers for the admin dashboard. Revenue counts
// delivered bookings dated in the month containing now.
func (s *AnalyticsService) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	db := s.db.WithContext(ctx)
	out := &Overview{StatusCounts: map[string]int64{}}

	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&out.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleWorker).Count(&out.TotalWorkers).Error; err != nil {
		return nil, fmt.Errorf("count workers: %w", err)
	}
	today := now.Format(models.DateLayout)
	if err := db.Model(&models.Booking{}).Where("date = ?", today).Count(&out.TodayOrders).Error; err != nil {
		return nil, fmt.Errorf("count today's orders: %w", err)
	}

	counts, err := statusCounts(db.Model(&models.Booking{}))
	if err != nil {
		return nil, err
	}
	for status, n := range counts {
		out.StatusCounts[string(status)] = n
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	var delivered []models.Booking
	err = db.Where("status = ? AND date >= ? AND date < ?", models.StatusDelivered,
		monthStart.Format(models.DateLayout), nextMonth.Format(models.DateLayout)).
		Find(&delivered).Error
	if err != nil {
		return nil, fmt.Errorf("load delivered bookings: %w", err)
	}
	prices, err := s.varieties.Prices(ctx)
	if err != nil {
		return nil, err
	}
	amounts := make([]float64, 0, len(delivered))
	for _, b := range delivered {
		amounts = append(amounts, pricing.BookingTotal(prices[b.MilkType], b.Quantity))
	}
	out.MonthlyRevenue = pricing.Sum(amounts...)
	return out, nil
}

// DeliveryStats counts the bookings visible to id on date, by status.
func (s *AnalyticsService) DeliveryStats(ctx context.Context, id models.Identity, date string) (*DeliveryStats, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	scoped, err := scopeBookings(s.db.WithContext(ctx).Model(&models.Booking{}), id)
	if err != nil {
		return nil, err
	}
	scoped = scoped.Where("date = ?", date).Session(&gorm.Session{})

	counts, err := statusCounts(scoped)
	if err != nil {
		return nil, err
	}
	out := &DeliveryStats{
		Date:      date,
		Pending:   counts[models.StatusPending],
		Delivered: counts[models.StatusDelivered],
		Missed:    counts[models.StatusMissed],
		Cancelled: counts[models.StatusCancelled],
	}
	out.Total = out.Pending + out.Delivered + out.Missed + out.Cancelled

	var liters struct{ Sum int64 }
	err = scoped.
		Select("COALESCE(SUM(quantity), 0) AS sum").
		Where("status <> ?", models.StatusCancelled).
		Scan(&liters).Error
	if err != nil {
		return nil, fmt.Errorf("sum liters: %w", err)
	}
	out.Liters = liters.Sum
	return out, nil
}

func statusCounts(query *gorm.DB) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	if err := query.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	out := make(map[models.BookingStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

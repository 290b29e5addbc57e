package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

func TestOverview(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	worker := e.register(t, models.RoleWorker, "w@milk.com")
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	e.routeWithWorker(t, worker, customer)

	book := func(date string, qty int) string {
		v, err := e.bookings.Create(ctx, customer, services.CreateBookingInput{Date: date, MilkType: "Aavin Green", Quantity: qty})
		require.NoError(t, err)
		return v.ID
	}
	deliver := func(id string) {
		_, err := e.bookings.UpdateDeliveryStatus(ctx, worker, id, models.StatusDelivered)
		require.NoError(t, err)
	}

	deliver(book("2024-11-10", 2))
	deliver(book("2024-11-30", 1))
	deliver(book("2024-10-31", 5)) // previous month
	book("2024-11-10", 3)

	now := time.Date(2024, time.November, 10, 9, 0, 0, 0, time.UTC)
	out, err := e.analytics.Overview(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.TotalCustomers)
	assert.EqualValues(t, 1, out.TotalWorkers)
	assert.EqualValues(t, 2, out.TodayOrders)
	assert.Equal(t, 84.0, out.MonthlyRevenue)
	assert.EqualValues(t, 3, out.StatusCounts[string(models.StatusDelivered)])
	assert.EqualValues(t, 1, out.StatusCounts[string(models.StatusPending)])
}

func TestDeliveryStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	worker := e.register(t, models.RoleWorker, "w@milk.com")
	other := e.register(t, models.RoleWorker, "w2@milk.com")
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	e.routeWithWorker(t, worker, customer)

	var ids []string
	for _, qty := range []int{2, 1, 4} {
		v, err := e.bookings.Create(ctx, customer, services.CreateBookingInput{Date: "2024-11-10", MilkType: "Aavin Green", Quantity: qty})
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	_, err := e.bookings.UpdateDeliveryStatus(ctx, worker, ids[0], models.StatusDelivered)
	require.NoError(t, err)
	_, err = e.bookings.UpdateDeliveryStatus(ctx, worker, ids[1], models.StatusMissed)
	require.NoError(t, err)
	cancelled := models.StatusCancelled
	_, err = e.bookings.Update(ctx, customer, ids[2], services.BookingPatch{Status: &cancelled})
	require.NoError(t, err)

	stats, err := e.analytics.DeliveryStats(ctx, worker, "2024-11-10")
	require.NoError(t, err)
	assert.Equal(t, &services.DeliveryStats{
		Date: "2024-11-10", Total: 3, Delivered: 1, Missed: 1, Cancelled: 1, Liters: 3,
	}, stats)

	all, err := e.analytics.DeliveryStats(ctx, e.admin(t), "2024-11-10")
	require.NoError(t, err)
	assert.Equal(t, stats, all)

	_, err = e.analytics.DeliveryStats(ctx, models.Identity{UserID: "x", Role: "guest"}, "2024-11-10")
	assert.ErrorIs(t, err, services.ErrForbidden)

	empty, err := e.analytics.DeliveryStats(ctx, other, "2024-11-10")
	require.NoError(t, err)
	assert.Zero(t, empty.Total)

	_, err = e.analytics.DeliveryStats(ctx, worker, "10-11-2024")
	assert.ErrorIs(t, err, services.ErrValidation)
}

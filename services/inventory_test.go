package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

func varietyByName(t *testing.T, e *env, name string) *models.MilkVariety {
	t.Helper()
	v, err := e.inventory.ResolveVariety(context.Background(), name)
	require.NoError(t, err)
	return v
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	green := varietyByName(t, e, "Aavin Green")

	v, err := e.inventory.AdjustStock(ctx, green.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 160, v.Stock)

	v, err = e.inventory.AdjustStock(ctx, green.ID, -500)
	require.NoError(t, err)
	assert.Zero(t, v.Stock)

	stored, err := e.inventory.Get(ctx, green.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Stock)

	_, err = e.inventory.AdjustStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBookingDoesNotConsumeStock(t *testing.T) {
	e := newEnv(t)
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	_, err := e.bookings.Create(context.Background(), customer, services.CreateBookingInput{
		Date: "2024-11-10", MilkType: "Aavin Green", Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 150, varietyByName(t, e, "Aavin Green").Stock)
}

func TestVarietyCRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	v, err := e.inventory.Create(ctx, services.VarietyInput{Name: "Aavin Gold", Color: "bg-amber-500", PricePerLiter: 32, Stock: 40})
	require.NoError(t, err)

	_, err = e.inventory.Create(ctx, services.VarietyInput{Name: "Aavin Gold", Color: "bg-amber-500", PricePerLiter: 32})
	assert.ErrorIs(t, err, services.ErrDuplicateName)

	_, err = e.inventory.Create(ctx, services.VarietyInput{Name: "Free", Color: "bg-white", PricePerLiter: 0})
	assert.ErrorIs(t, err, services.ErrValidation)

	price := 34.5
	updated, err := e.inventory.Update(ctx, v.ID, services.VarietyPatch{PricePerLiter: &price})
	require.NoError(t, err)
	assert.Equal(t, 34.5, updated.PricePerLiter)

	negative := -1
	_, err = e.inventory.Update(ctx, v.ID, services.VarietyPatch{Stock: &negative})
	assert.ErrorIs(t, err, services.ErrValidation)

	list, err := e.inventory.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, len(services.DefaultVarieties)+1)

	require.NoError(t, e.inventory.Delete(ctx, v.ID))
	assert.ErrorIs(t, e.inventory.Delete(ctx, v.ID), services.ErrNotFound)
}

func TestInventorySummary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	purple := varietyByName(t, e, "Aavin Purple")
	butter := varietyByName(t, e, "Buttermilk")

	_, err := e.inventory.AdjustStock(ctx, purple.ID, -30) // 45: low
	require.NoError(t, err)
	_, err = e.inventory.AdjustStock(ctx, butter.ID, -60) // 20: critical
	require.NoError(t, err)

	summary, err := e.inventory.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(services.DefaultVarieties), summary.VarietyCount)
	assert.Equal(t, 150+100+200+45+100+20, summary.TotalStock)
	assert.Equal(t, 150*28.0+100*26+200*24+45*22+100*20+20*15, summary.TotalValue)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Aavin Purple", summary.LowStock[0].Name)
	require.Len(t, summary.CriticalStock, 1)
	assert.Equal(t, "Buttermilk", summary.CriticalStock[0].Name)
}

func TestRenameVarietyCarriesReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	green := varietyByName(t, e, "Aavin Green")

	booking, err := e.bookings.Create(ctx, customer, services.CreateBookingInput{Date: "2024-11-10", MilkType: "Aavin Green", Quantity: 2})
	require.NoError(t, err)
	_, err = e.subscriptions.Create(ctx, customer, services.CreateSubscriptionInput{MilkType: "Aavin Green", Quantity: 1, StartDate: "2024-11-01"})
	require.NoError(t, err)

	name := "Aavin Green Premium"
	_, err = e.inventory.Update(ctx, green.ID, services.VarietyPatch{Name: &name})
	require.NoError(t, err)

	got, err := e.bookings.Get(ctx, customer, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.MilkType)
	assert.Equal(t, 56.0, got.TotalPrice)

	subs, err := e.subscriptions.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, name, subs[0].MilkType)
	assert.Equal(t, 840.0, subs[0].MonthlyCost)

	_, err = e.inventory.ResolveVariety(ctx, "Aavin Green")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteVarietyInUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	green := varietyByName(t, e, "Aavin Green")
	blue := varietyByName(t, e, "Aavin Blue")
	butter := varietyByName(t, e, "Buttermilk")

	_, err := e.bookings.Create(ctx, customer, services.CreateBookingInput{Date: "2024-11-10", MilkType: "Aavin Green", Quantity: 1})
	require.NoError(t, err)
	_, err = e.subscriptions.Create(ctx, customer, services.CreateSubscriptionInput{MilkType: "Aavin Blue", Quantity: 1, StartDate: "2024-11-01"})
	require.NoError(t, err)

	assert.ErrorIs(t, e.inventory.Delete(ctx, green.ID), services.ErrValidation)
	assert.ErrorIs(t, e.inventory.Delete(ctx, blue.ID), services.ErrValidation)
	require.NoError(t, e.inventory.Delete(ctx, butter.ID))

	_, err = e.inventory.Get(ctx, green.ID)
	assert.NoError(t, err)
}

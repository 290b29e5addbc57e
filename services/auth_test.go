package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milk-delivery-api/models"
	"milk-delivery-api/services"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.auth.Register(ctx, services.RegisterInput{
		Name: "Priya", Email: "Priya@Milk.Co.In", Password: "secret123", Role: models.RoleCustomer, Phone: "98400",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@milk.co.in", res.User.Email)
	assert.Equal(t, "token-"+res.User.ID, res.Token)

	var stored models.User
	require.NoError(t, e.db.First(&stored, "id = ?", res.User.ID).Error)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	login, err := e.auth.Login(ctx, "priya@milk.co.in", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	me, err := e.auth.Me(ctx, models.Identity{UserID: login.User.ID})
	require.NoError(t, err)
	assert.Equal(t, "Priya", me.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, models.RoleCustomer, "dup@milk.com")

	_, err := e.auth.Register(ctx, services.RegisterInput{
		Name: "Other", Email: "DUP@milk.com", Password: "secret123", Role: models.RoleWorker,
	})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	var count int64
	e.db.Model(&models.User{}).Where("email = ?", "dup@milk.com").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := map[string]services.RegisterInput{
		"bad role":       {Name: "A", Email: "a@milk.com", Password: "secret123", Role: "driver"},
		"short password": {Name: "A", Email: "a@milk.com", Password: "123", Role: models.RoleCustomer},
		"bad email":      {Name: "A", Email: "not-an-email", Password: "secret123", Role: models.RoleCustomer},
		"missing name":   {Email: "a@milk.com", Password: "secret123", Role: models.RoleCustomer},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, in)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, models.RoleCustomer, "c@milk.com")

	_, err := e.auth.Login(ctx, "c@milk.com", "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = e.auth.Login(ctx, "nobody@milk.com", "secret123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestSeedInitIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.seed.Init(ctx)
	require.NoError(t, err)
	assert.False(t, res.AdminCreated)
	assert.Zero(t, res.VarietiesCreated)

	var admins, varieties int64
	e.db.Model(&models.User{}).Where("email = ?", "admin@milk.com").Count(&admins)
	e.db.Model(&models.MilkVariety{}).Count(&varieties)
	assert.EqualValues(t, 1, admins)
	assert.EqualValues(t, len(services.DefaultVarieties), varieties)

	login, err := e.auth.Login(ctx, "admin@milk.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, login.User.Role)
}

func TestSeedInitKeepsAdminCatalogue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	butter, err := e.inventory.ResolveVariety(ctx, "Buttermilk")
	require.NoError(t, err)
	require.NoError(t, e.inventory.Delete(ctx, butter.ID))

	res, err := e.seed.Init(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.VarietiesCreated)

	var count int64
	e.db.Model(&models.MilkVariety{}).Count(&count)
	assert.EqualValues(t, len(services.DefaultVarieties)-1, count)
	_, err = e.inventory.ResolveVariety(ctx, "Buttermilk")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestVerifyRejectsDeletedUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	customer := e.register(t, models.RoleCustomer, "c@milk.com")
	require.NoError(t, e.auth.Verify(ctx, customer))

	forged := customer
	forged.Role = models.RoleAdmin
	assert.ErrorIs(t, e.auth.Verify(ctx, forged), services.ErrUnauthorized)

	require.NoError(t, e.users.Delete(ctx, e.admin(t), customer.UserID))
	assert.ErrorIs(t, e.auth.Verify(ctx, customer), services.ErrUnauthorized)
	_, err := e.auth.Me(ctx, customer)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

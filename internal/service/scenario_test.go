package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
)

// TestRentalLifecycle walks a booking from signup through a paid damage bill.
func TestRentalLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ops := env.signupStaff(t, "ops@azoom.mymail.sg")

	_, _, err := env.auth.SignupCustomer(ctx, domain.SignupRequest{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
		Password: "Secret123", ConfirmPassword: "Secret123", AgreeTerms: true,
	})
	require.NoError(t, err)
	token, _, err := env.auth.Login(ctx, domain.SessionCustomer, "jane@example.com", "Secret123", false)
	require.NoError(t, err)
	jane, err := env.auth.Authenticate(ctx, token)
	require.NoError(t, err)

	b, err := env.booking.Create(ctx, jane, testDraft("Tesla Model 3"))
	require.NoError(t, err)
	assert.Equal(t, 4, env.stock(t, "Tesla Model 3"))

	snap, err := env.dashboard.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ConfirmedCount)
	tesla := fleetEntry(snap, "Tesla Model 3")
	assert.Equal(t, "4/5", fmt.Sprintf("%d/%d", tesla.CurrentStock, tesla.OriginalStock))
	assert.Equal(t, "39/40", snap.ActiveFleet)

	returned, err := env.customer.ReturnBooking(ctx, jane, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusReturned, returned.Status)
	assert.Equal(t, 5, env.stock(t, "Tesla Model 3"))

	_, req, err := env.admin.InspectBooking(ctx, ops, b.ID, domain.InspectionResult{
		HasDamage: true, DamageDescription: "Cracked wing mirror", DamageChargeCents: 150_00,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DamageStatusPending, req.Status)

	paid, err := env.customer.PayDamage(ctx, jane, req.ID, validCard)
	require.NoError(t, err)
	assert.Equal(t, domain.DamageStatusPaid, paid.Status)

	final, err := env.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, final.Inspection)
	assert.True(t, final.Inspection.HasDamage)
	assert.Equal(t, int64(150_00), final.Inspection.DamageChargeCents)
	assert.True(t, final.Inspection.DamagePaid)
}

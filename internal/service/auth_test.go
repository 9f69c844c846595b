package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azoom-rental-backend/internal/domain"
)

func TestAuthService_Validation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Email", func(t *testing.T) {
		assert.NoError(t, env.auth.ValidateEmail("jane@example.com", false))
		assert.ErrorIs(t, env.auth.ValidateEmail("jane@example", false), ErrValidation)
		assert.ErrorIs(t, env.auth.ValidateEmail("jane doe@example.com", false), ErrValidation)

		err := env.auth.ValidateEmail("ops@example.com", true)
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "Staff email must end with @azoom.mymail.sg", err.Error())
		assert.NoError(t, env.auth.ValidateEmail("ops@azoom.mymail.sg", true))
	})

	t.Run("Password", func(t *testing.T) {
		cases := map[string]string{
			"Short1":        "Password must be at least 8 characters",
			"lowercase1":    "Password must contain at least 1 uppercase letter",
			"NoDigitsAtAll": "Password must contain at least 1 number",
		}
		for pw, msg := range cases {
			err := env.auth.ValidatePassword(pw)
			require.ErrorIs(t, err, ErrValidation, pw)
			assert.Equal(t, msg, err.Error())
		}
		assert.NoError(t, env.auth.ValidatePassword("Secret123"))
	})
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("CustomerSuccess", func(t *testing.T) {
		env := newTestEnv(t)
		token, profile, err := env.auth.SignupCustomer(ctx, domain.SignupRequest{
			FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
			Password: "Secret123", ConfirmPassword: "Secret123", AgreeTerms: true,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, domain.SessionCustomer, profile.Kind)
		assert.NotEmpty(t, profile.ID)

		stored, err := env.store.GetUserByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "Secret123", stored.PasswordHash)
	})

	t.Run("DuplicateIsCaseInsensitive", func(t *testing.T) {
		env := newTestEnv(t)
		env.signupCustomer(t, "Jane", "Doe", "jane@example.com")

		_, _, err := env.auth.SignupCustomer(ctx, domain.SignupRequest{
			FirstName: "Jane", LastName: "Again", Email: "JANE@example.com",
			Password: "Secret123", ConfirmPassword: "Secret123", AgreeTerms: true,
		})
		require.ErrorIs(t, err, ErrEmailTaken)
		assert.Equal(t, "This email is already registered", err.Error())
	})

	t.Run("FormErrors", func(t *testing.T) {
		env := newTestEnv(t)
		base := domain.SignupRequest{
			FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
			Password: "Secret123", ConfirmPassword: "Secret123", AgreeTerms: true,
		}

		mismatch := base
		mismatch.ConfirmPassword = "Secret124"
		_, _, err := env.auth.SignupCustomer(ctx, mismatch)
		assert.EqualError(t, err, "Passwords do not match")

		noTerms := base
		noTerms.AgreeTerms = false
		_, _, err = env.auth.SignupCustomer(ctx, noTerms)
		assert.EqualError(t, err, "Please agree to the terms and conditions")

		noName := base
		noName.LastName = " "
		_, _, err = env.auth.SignupCustomer(ctx, noName)
		assert.EqualError(t, err, "Please enter your full name")
	})

	t.Run("StaffNeedsIDAndDomain", func(t *testing.T) {
		env := newTestEnv(t)
		req := domain.SignupRequest{
			FirstName: "Ops", LastName: "Lead", Email: "ops@azoom.mymail.sg",
			Password: "Secret123", ConfirmPassword: "Secret123", AgreeTerms: true,
		}
		_, _, err := env.auth.SignupStaff(ctx, req)
		assert.EqualError(t, err, "Please enter staff ID and select a department")

		req.StaffID, req.Department = "S-9", "Fleet"
		_, profile, err := env.auth.SignupStaff(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.SessionStaff, profile.Kind)
		assert.Equal(t, "S-9", profile.StaffID)

		_, _, err = env.auth.SignupStaff(ctx, req)
		assert.EqualError(t, err, "This staff email is already registered")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.signupCustomer(t, "Jane", "Doe", "jane@example.com")
	env.signupStaff(t, "ops@azoom.mymail.sg")

	t.Run("Customer", func(t *testing.T) {
		token, profile, err := env.auth.Login(ctx, domain.SessionCustomer, "jane@example.com", "Secret123", false)
		require.NoError(t, err)
		assert.Equal(t, "Jane", profile.FirstName)

		s, err := env.auth.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.True(t, s.IsCustomer())
		assert.Equal(t, "Jane Doe", s.Name)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, domain.SessionCustomer, "jane@example.com", "Secret999", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("StaffMessage", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, domain.SessionStaff, "nobody@azoom.mymail.sg", "Secret123", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid staff email or password", err.Error())
	})

	t.Run("CustomerCannotUseStaffLogin", func(t *testing.T) {
		_, _, err := env.auth.Login(ctx, domain.SessionStaff, "jane@example.com", "Secret123", false)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("RememberMe", func(t *testing.T) {
		saved, err := env.auth.SavedEmail(ctx)
		require.NoError(t, err)
		assert.Empty(t, saved)

		_, _, err = env.auth.Login(ctx, domain.SessionStaff, "ops@azoom.mymail.sg", "Secret123", true)
		require.NoError(t, err)
		saved, err = env.auth.SavedEmail(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ops@azoom.mymail.sg", saved)
	})

	t.Run("DeletedAccountTokenRejected", func(t *testing.T) {
		token, _, err := env.auth.Login(ctx, domain.SessionCustomer, "jane@example.com", "Secret123", false)
		require.NoError(t, err)
		_, err = env.store.DeleteUserByEmail(ctx, "jane@example.com")
		require.NoError(t, err)

		_, err = env.auth.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := env.auth.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/events"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/security"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authService struct {
	userRepo    repository.UserRepository
	staffRepo   repository.StaffRepository
	prefRepo    repository.PreferenceRepository
	tokens      security.TokenManager
	bus         events.Publisher
	staffDomain string
	now         func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	staffRepo repository.StaffRepository,
	prefRepo repository.PreferenceRepository,
	tokens security.TokenManager,
	bus events.Publisher,
	staffDomain string,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		staffRepo:   staffRepo,
		prefRepo:    prefRepo,
		tokens:      tokens,
		bus:         bus,
		staffDomain: staffDomain,
		now:         time.Now,
	}
}

func (s *authService) ValidateEmail(email string, staff bool) error {
	if !emailPattern.MatchString(email) {
		return invalid("Please enter a valid email address")
	}
	if staff && !strings.HasSuffix(strings.ToLower(email), strings.ToLower(s.staffDomain)) {
		return invalid("Staff email must end with " + s.staffDomain)
	}
	return nil
}

func (s *authService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return invalid("Password must be at least 8 characters")
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return invalid("Password must contain at least 1 uppercase letter")
	}
	if !digit {
		return invalid("Password must contain at least 1 number")
	}
	return nil
}

// validateSignup runs the form checks shared by both account kinds, in the
// order the form reports them.
func (s *authService) validateSignup(req *domain.SignupRequest, staff bool) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)

	if req.FirstName == "" || req.LastName == "" {
		return invalid("Please enter your full name")
	}
	if req.Email == "" {
		return invalid("Please enter your email")
	}
	if err := s.ValidateEmail(req.Email, staff); err != nil {
		return err
	}
	if err := s.ValidatePassword(req.Password); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return invalid("Passwords do not match")
	}
	if !req.AgreeTerms {
		return invalid("Please agree to the terms and conditions")
	}
	if staff {
		req.StaffID = strings.TrimSpace(req.StaffID)
		req.Department = strings.TrimSpace(req.Department)
		if req.StaffID == "" || req.Department == "" {
			return invalid("Please enter staff ID and select a department")
		}
	}
	return nil
}

func (s *authService) newUser(req domain.SignupRequest) (*domain.User, error) {
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		SignupDate:   s.now().UTC(),
	}, nil
}

func (s *authService) SignupCustomer(ctx context.Context, req domain.SignupRequest) (string, *domain.Profile, error) {
	logger.EnterMethod("authService.SignupCustomer", "email", req.Email)

	if err := s.validateSignup(&req, false); err != nil {
		return "", nil, err
	}
	user, err := s.newUser(req)
	if err != nil {
		logger.ExitMethodWithError("authService.SignupCustomer", err)
		return "", nil, err
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", nil, emailTaken("This email is already registered")
		}
		logger.ExitMethodWithError("authService.SignupCustomer", err, "email", req.Email)
		return "", nil, err
	}

	s.bus.Publish(domain.ChangeEvent{Type: domain.EventUserSignedUp, SubjectID: user.ID, Actor: user.Email})

	token, _, err := s.tokens.IssueSession(domain.SessionCustomer, user.ID, user.Email, user.FullName())
	if err != nil {
		return "", nil, err
	}
	profile := user.Profile()
	logger.ExitMethod("authService.SignupCustomer", "userID", user.ID)
	return token, &profile, nil
}

func (s *authService) SignupStaff(ctx context.Context, req domain.SignupRequest) (string, *domain.Profile, error) {
	logger.EnterMethod("authService.SignupStaff", "email", req.Email)

	if err := s.validateSignup(&req, true); err != nil {
		return "", nil, err
	}
	user, err := s.newUser(req)
	if err != nil {
		logger.ExitMethodWithError("authService.SignupStaff", err)
		return "", nil, err
	}
	staff := &domain.Staff{
		User:       *user,
		StaffID:    req.StaffID,
		Department: req.Department,
		Role:       domain.StaffRole,
	}
	if err := s.staffRepo.CreateStaff(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", nil, emailTaken("This staff email is already registered")
		}
		logger.ExitMethodWithError("authService.SignupStaff", err, "email", req.Email)
		return "", nil, err
	}

	token, _, err := s.tokens.IssueSession(domain.SessionStaff, staff.ID, staff.Email, staff.FullName())
	if err != nil {
		return "", nil, err
	}
	profile := staff.Profile()
	logger.ExitMethod("authService.SignupStaff", "staffID", staff.StaffID)
	return token, &profile, nil
}

func (s *authService) Login(ctx context.Context, kind domain.SessionKind, email, password string, rememberMe bool) (string, *domain.Profile, error) {
	logger.EnterMethod("authService.Login", "kind", kind, "email", email)

	email = strings.TrimSpace(email)
	staff := kind == domain.SessionStaff
	if err := s.ValidateEmail(email, staff); err != nil {
		return "", nil, err
	}
	if password == "" {
		return "", nil, invalid("Please enter your password")
	}

	var (
		profile domain.Profile
		hash    string
		fail    error
	)
	switch kind {
	case domain.SessionCustomer:
		fail = badCredentials("Invalid email or password")
		user, err := s.userRepo.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", nil, fail
			}
			return "", nil, err
		}
		profile, hash = user.Profile(), user.PasswordHash
	case domain.SessionStaff:
		fail = badCredentials("Invalid staff email or password")
		member, err := s.staffRepo.GetStaffByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", nil, fail
			}
			return "", nil, err
		}
		profile, hash = member.Profile(), member.PasswordHash
	default:
		return "", nil, invalid("Unknown account type")
	}

	if !security.CheckPassword(hash, password) {
		logger.Info("login rejected", "kind", kind, "email", email)
		return "", nil, fail
	}

	token, _, err := s.tokens.IssueSession(kind, profile.ID, profile.Email, strings.TrimSpace(profile.FirstName+" "+profile.LastName))
	if err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return "", nil, err
	}

	if rememberMe {
		if err := s.prefRepo.SetSavedEmail(ctx, email); err != nil {
			logger.Warn("failed to remember email", "error", err)
		}
	}

	logger.ExitMethod("authService.Login", "userID", profile.ID)
	return token, &profile, nil
}

func (s *authService) SavedEmail(ctx context.Context) (string, error) {
	return s.prefRepo.GetSavedEmail(ctx)
}

// Authenticate turns a bearer token into a session. Customer sessions whose
// account has since been deleted are rejected.
func (s *authService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	session, err := s.tokens.ValidateToken(token)
	if err != nil {
		return domain.Session{}, ErrUnauthenticated
	}

	switch session.Kind {
	case domain.SessionCustomer:
		if _, err := s.userRepo.GetUserByEmail(ctx, session.Email); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Session{}, ErrUnauthenticated
			}
			return domain.Session{}, err
		}
	case domain.SessionStaff:
		if _, err := s.staffRepo.GetStaffByEmail(ctx, session.Email); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.Session{}, ErrUnauthenticated
			}
			return domain.Session{}, err
		}
	}
	return session, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	accountserrors "reservio/internal/accounts/errors"
	"reservio/internal/accounts/repository"
	"reservio/internal/accounts/validator"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/model"
	"reservio/pkg/sanitizer"
)

// BookingPurger and ResourcePurger are the slices of the other
// domains' repositories account deletion needs for its cascade.
type BookingPurger interface {
	DeleteByResource(ctx context.Context, resourceID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type ResourcePurger interface {
	FindIDsByUser(ctx context.Context, userID string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type AccountService interface {
	Register(ctx context.Context, creds *model.Credentials) (*model.User, error)
	SignIn(ctx context.Context, creds *model.Credentials) (*model.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type accountService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	bookings  BookingPurger
	resources ResourcePurger
	validator *validator.AccountValidator
	cfg       *config.Config
}

func NewAccountService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	bookings BookingPurger,
	resources ResourcePurger,
	validator *validator.AccountValidator,
	cfg *config.Config,
) AccountService {
	return &accountService{
		users:     users,
		sessions:  sessions,
		bookings:  bookings,
		resources: resources,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *accountService) Register(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	creds.Name = sanitizer.NormalizeName(creds.Name)
	creds.Email = sanitizer.NormalizeEmail(creds.Email)

	if err := s.validator.ValidateRegistration(creds); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Registration validation failed", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         creds.Name,
		Email:        creds.Email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, accountserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("An account with this email already exists")
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create account", err)
	}

	s.cfg.Log.Info("Account registered successfully", "user_id", user.ID)
	return user, nil
}

func (s *accountService) SignIn(ctx context.Context, creds *model.Credentials) (*model.Session, error) {
	creds.Email = sanitizer.NormalizeEmail(creds.Email)

	if err := s.validator.ValidateSignIn(creds); err != nil {
		s.cfg.Log.Warn("Sign-in validation failed", "error", err)
		return nil, apperrors.Validation("Sign-in validation failed", map[string]any{"error": err.Error()})
	}

	user, err := s.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, accountserrors.ErrUserNotFound) {
			// Same response for unknown email and wrong password.
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to look up account", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	session := &model.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.SessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.cfg.Log.Error("Failed to create session", "user_id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to create session", err)
	}

	s.cfg.Log.Info("Signed in successfully", "user_id", user.ID)
	return session, nil
}

func (s *accountService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.Unauthorized("Authentication required")
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		if errors.Is(err, accountserrors.ErrSessionNotFound) {
			return apperrors.Unauthorized("Invalid session token")
		}
		return apperrors.Internal("Failed to revoke session", err)
	}

	return nil
}

// Authenticate resolves a bearer token to a user id. Expired sessions
// are revoked on sight.
func (s *accountService) Authenticate(ctx context.Context, token string) (string, error) {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, accountserrors.ErrSessionNotFound) {
			return "", accountserrors.ErrSessionNotFound
		}
		return "", err
	}

	if session.Expired(time.Now().UTC()) {
		if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, accountserrors.ErrSessionNotFound) {
			s.cfg.Log.Warn("Failed to revoke expired session", "error", err)
		}
		return "", accountserrors.ErrSessionExpired
	}

	return session.UserID, nil
}

// DeleteAccount removes the user and everything they own in one
// transaction: bookings on their resources (including other users'),
// their own bookings, resources, sessions, then the user document.
func (s *accountService) DeleteAccount(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.Unauthorized("Authentication required")
	}

	err := s.users.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Other users may hold bookings on this account's resources.
		// Those go first, so no booking outlives its resource.
		resourceIDs, err := s.resources.FindIDsByUser(sessCtx, userID)
		if err != nil {
			return apperrors.Internal("Failed to list account resources", err)
		}
		for _, resourceID := range resourceIDs {
			if _, err := s.bookings.DeleteByResource(sessCtx, resourceID); err != nil {
				return apperrors.Internal("Failed to delete resource bookings", err)
			}
		}
		if _, err := s.bookings.DeleteByUser(sessCtx, userID); err != nil {
			return apperrors.Internal("Failed to delete account bookings", err)
		}
		if _, err := s.resources.DeleteByUser(sessCtx, userID); err != nil {
			return apperrors.Internal("Failed to delete account resources", err)
		}
		if _, err := s.sessions.DeleteByUser(sessCtx, userID); err != nil {
			return apperrors.Internal("Failed to revoke account sessions", err)
		}
		if err := s.users.Delete(sessCtx, userID); err != nil {
			if errors.Is(err, accountserrors.ErrUserNotFound) {
				return apperrors.NotFoundWithID("Account", userID)
			}
			return apperrors.Internal("Failed to delete account", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete account", "user_id", userID, "error", err)
		return err
	}

	s.cfg.Log.Info("Account deleted successfully", "user_id", userID)
	return nil
}

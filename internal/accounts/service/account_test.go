package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	accountserrors "reservio/internal/accounts/errors"
	"reservio/internal/accounts/validator"
	"reservio/pkg/config"
	mongotx "reservio/pkg/db/mongo"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockUserRepository struct {
	createFunc      func(ctx context.Context, user *model.User) error
	findByIDFunc    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc func(ctx context.Context, email string) (*model.User, error)
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, accountserrors.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, accountserrors.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSessionRepository struct {
	createFunc       func(ctx context.Context, session *model.Session) error
	findByTokenFunc  func(ctx context.Context, token string) (*model.Session, error)
	deleteFunc       func(ctx context.Context, token string) error
	deleteByUserFunc func(ctx context.Context, userID string) (int64, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	if m.findByTokenFunc != nil {
		return m.findByTokenFunc(ctx, token)
	}
	return nil, accountserrors.ErrSessionNotFound
}

func (m *mockSessionRepository) Delete(ctx context.Context, token string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token)
	}
	return nil
}

func (m *mockSessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if m.deleteByUserFunc != nil {
		return m.deleteByUserFunc(ctx, userID)
	}
	return 0, nil
}

type mockBookingPurger struct {
	deleteByResourceFunc func(ctx context.Context, resourceID string) (int64, error)
	deleteByUserFunc     func(ctx context.Context, userID string) (int64, error)
}

func (m *mockBookingPurger) DeleteByResource(ctx context.Context, resourceID string) (int64, error) {
	if m.deleteByResourceFunc != nil {
		return m.deleteByResourceFunc(ctx, resourceID)
	}
	return 0, nil
}

func (m *mockBookingPurger) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if m.deleteByUserFunc != nil {
		return m.deleteByUserFunc(ctx, userID)
	}
	return 0, nil
}

type mockResourcePurger struct {
	findIDsByUserFunc func(ctx context.Context, userID string) ([]string, error)
	deleteByUserFunc  func(ctx context.Context, userID string) (int64, error)
}

func (m *mockResourcePurger) FindIDsByUser(ctx context.Context, userID string) ([]string, error) {
	if m.findIDsByUserFunc != nil {
		return m.findIDsByUserFunc(ctx, userID)
	}
	return []string{}, nil
}

func (m *mockResourcePurger) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if m.deleteByUserFunc != nil {
		return m.deleteByUserFunc(ctx, userID)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		SessionTTL: 24 * time.Hour,
	}
}

func newTestService(users *mockUserRepository, sessions *mockSessionRepository, bookings *mockBookingPurger, resources *mockResourcePurger) AccountService {
	cfg := testConfig()
	if sessions == nil {
		sessions = &mockSessionRepository{}
	}
	if bookings == nil {
		bookings = &mockBookingPurger{}
	}
	if resources == nil {
		resources = &mockResourcePurger{}
	}
	return NewAccountService(users, sessions, bookings, resources, validator.NewAccountValidator(cfg.Log), cfg)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestRegister_Success(t *testing.T) {
	var created *model.User
	users := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(users, nil, nil, nil)

	user, err := svc.Register(context.Background(), &model.Credentials{
		Name:     "  Ada  Lovelace ",
		Email:    "  Ada@Example.COM ",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected a user to be persisted")
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("expected normalized name, got %q", user.Name)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-password" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-password")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := &mockUserRepository{
		createFunc: func(ctx context.Context, user *model.User) error {
			return accountserrors.ErrDuplicateEmail
		},
	}
	svc := newTestService(users, nil, nil, nil)

	_, err := svc.Register(context.Background(), &model.Credentials{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "s3cret-password",
	})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if appErr.Message != "An account with this email already exists" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestSignIn_Success(t *testing.T) {
	hash := hashOf(t, "s3cret-password")
	users := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	var created *model.Session
	sessions := &mockSessionRepository{
		createFunc: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}
	svc := newTestService(users, sessions, nil, nil)

	session, err := svc.SignIn(context.Background(), &model.Credentials{
		Email:    "ada@example.com",
		Password: "s3cret-password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected an opaque session token")
	}
	if session.UserID != "user-1" {
		t.Errorf("expected session for user-1, got %s", session.UserID)
	}
	if created == nil {
		t.Fatal("expected the session to be persisted")
	}
	if !created.ExpiresAt.After(time.Now()) {
		t.Error("expected a future expiry")
	}
}

func TestSignIn_BadCredentialsIndistinguishable(t *testing.T) {
	hash := hashOf(t, "correct-password")
	knownUser := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}
	unknownUser := &mockUserRepository{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, accountserrors.ErrUserNotFound
		},
	}

	wrongPassword := func() error {
		svc := newTestService(knownUser, nil, nil, nil)
		_, err := svc.SignIn(context.Background(), &model.Credentials{Email: "ada@example.com", Password: "wrong-password"})
		return err
	}()
	unknownEmail := func() error {
		svc := newTestService(unknownUser, nil, nil, nil)
		_, err := svc.SignIn(context.Background(), &model.Credentials{Email: "ghost@example.com", Password: "whatever-password"})
		return err
	}()

	for _, err := range []error{wrongPassword, unknownEmail} {
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if appErr.Message != "Invalid email or password" {
			t.Errorf("unexpected message: %q", appErr.Message)
		}
	}
}

func TestSignOut_UnknownToken(t *testing.T) {
	sessions := &mockSessionRepository{
		deleteFunc: func(ctx context.Context, token string) error {
			return accountserrors.ErrSessionNotFound
		},
	}
	svc := newTestService(&mockUserRepository{}, sessions, nil, nil)

	err := svc.SignOut(context.Background(), "bogus-token")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticate_ValidSession(t *testing.T) {
	sessions := &mockSessionRepository{
		findByTokenFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{Token: token, UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	svc := newTestService(&mockUserRepository{}, sessions, nil, nil)

	userID, err := svc.Authenticate(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("expected user-1, got %s", userID)
	}
}

func TestAuthenticate_ExpiredSessionRevoked(t *testing.T) {
	revoked := false
	sessions := &mockSessionRepository{
		findByTokenFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{Token: token, UserID: "user-1", ExpiresAt: time.Now().Add(-time.Minute)}, nil
		},
		deleteFunc: func(ctx context.Context, token string) error {
			revoked = true
			return nil
		},
	}
	svc := newTestService(&mockUserRepository{}, sessions, nil, nil)

	_, err := svc.Authenticate(context.Background(), "stale-token")
	if !errors.Is(err, accountserrors.ErrSessionExpired) {
		t.Fatalf("expected expired session error, got %v", err)
	}
	if !revoked {
		t.Error("expected the expired session to be revoked")
	}
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	svc := newTestService(&mockUserRepository{}, &mockSessionRepository{}, nil, nil)

	_, err := svc.Authenticate(context.Background(), "bogus-token")
	if !errors.Is(err, accountserrors.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestDeleteAccount_CascadeOrder(t *testing.T) {
	var order []string
	users := &mockUserRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			order = append(order, "user")
			return nil
		},
	}
	sessions := &mockSessionRepository{
		deleteByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			order = append(order, "sessions")
			return 1, nil
		},
	}
	bookings := &mockBookingPurger{
		deleteByResourceFunc: func(ctx context.Context, resourceID string) (int64, error) {
			order = append(order, "resource-bookings")
			return 1, nil
		},
		deleteByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			order = append(order, "bookings")
			return 2, nil
		},
	}
	resources := &mockResourcePurger{
		findIDsByUserFunc: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"res-1"}, nil
		},
		deleteByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			order = append(order, "resources")
			return 1, nil
		},
	}
	svc := newTestService(users, sessions, bookings, resources)

	if err := svc.DeleteAccount(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"resource-bookings", "bookings", "resources", "sessions", "user"}
	if len(order) != len(want) {
		t.Fatalf("expected %d cascade steps, got %v", len(want), order)
	}
	for i, step := range want {
		if order[i] != step {
			t.Fatalf("expected cascade order %v, got %v", want, order)
		}
	}
}

func TestDeleteAccount_PurgesOtherUsersBookingsOnOwnedResources(t *testing.T) {
	// bob booked alice's resource. Deleting alice's account must take
	// that booking with the resource, not leave it pointing at a
	// deleted resource id.
	store := []*model.Booking{
		{ID: 1, UserID: "alice", ResourceID: "res-a"},
		{ID: 2, UserID: "bob", ResourceID: "res-a"},
		{ID: 3, UserID: "bob", ResourceID: "res-b"},
	}
	remove := func(keep func(b *model.Booking) bool) int64 {
		var kept []*model.Booking
		var removed int64
		for _, b := range store {
			if keep(b) {
				kept = append(kept, b)
			} else {
				removed++
			}
		}
		store = kept
		return removed
	}

	bookings := &mockBookingPurger{
		deleteByResourceFunc: func(ctx context.Context, resourceID string) (int64, error) {
			return remove(func(b *model.Booking) bool { return b.ResourceID != resourceID }), nil
		},
		deleteByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			return remove(func(b *model.Booking) bool { return b.UserID != userID }), nil
		},
	}
	resources := &mockResourcePurger{
		findIDsByUserFunc: func(ctx context.Context, userID string) ([]string, error) {
			return []string{"res-a"}, nil
		},
	}
	svc := newTestService(&mockUserRepository{}, nil, bookings, resources)

	if err := svc.DeleteAccount(context.Background(), "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, b := range store {
		if b.ResourceID == "res-a" {
			t.Errorf("booking %d still references alice's deleted resource", b.ID)
		}
	}
	if len(store) != 1 || store[0].ID != 3 {
		t.Errorf("expected only bob's booking on his own resource to survive, got %+v", store)
	}
}

func TestDeleteAccount_RequiresUser(t *testing.T) {
	svc := newTestService(&mockUserRepository{}, nil, nil, nil)

	err := svc.DeleteAccount(context.Background(), "")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

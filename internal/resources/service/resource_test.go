package service

import (
	"context"
	"testing"
	"time"

	resourceserrors "reservio/internal/resources/errors"
	"reservio/internal/resources/validator"
	"reservio/pkg/config"
	mongotx "reservio/pkg/db/mongo"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/logger"
	"reservio/pkg/model"
)

type mockResourceRepository struct {
	createFunc      func(ctx context.Context, resource *model.Resource) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Resource, error)
	findByUserFunc  func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Resource, error)
	countByUserFunc func(ctx context.Context, userID string) (int64, error)
	updateFunc      func(ctx context.Context, id string, name string, description *string) error
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, resource)
	}
	return nil
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Resource{ID: id, Name: "Room A", UserID: "owner"}, nil
}

func (m *mockResourceRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Resource, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Resource{}, nil
}

func (m *mockResourceRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockResourceRepository) Update(ctx context.Context, id string, name string, description *string) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, name, description)
	}
	return nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockResourceRepository) FindIDsByUser(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (m *mockResourceRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (m *mockResourceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBookingStore struct {
	findByResourceFunc   func(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error)
	deleteByResourceFunc func(ctx context.Context, resourceID string) (int64, error)
}

func (m *mockBookingStore) FindByResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByResourceFunc != nil {
		return m.findByResourceFunc(ctx, resourceID, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingStore) DeleteByResource(ctx context.Context, resourceID string) (int64, error) {
	if m.deleteByResourceFunc != nil {
		return m.deleteByResourceFunc(ctx, resourceID)
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
	}
}

func newTestService(repo *mockResourceRepository, bookings *mockBookingStore) ResourceService {
	cfg := testConfig()
	if bookings == nil {
		bookings = &mockBookingStore{}
	}
	return NewResourceService(repo, bookings, validator.NewResourceValidator(cfg.Log), cfg)
}

func TestCreate_AssignsIDAndSanitizes(t *testing.T) {
	var created *model.Resource
	repo := &mockResourceRepository{
		createFunc: func(ctx context.Context, resource *model.Resource) error {
			created = resource
			return nil
		},
	}
	svc := newTestService(repo, nil)

	resource := &model.Resource{
		Name:        "  Conference   Room A  ",
		Description: "  Large room\twith projector  ",
	}

	if err := svc.Create(context.Background(), "user-1", resource); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if created.UserID != "user-1" {
		t.Errorf("expected user-1 as owner, got %s", created.UserID)
	}
	if created.Name != "Conference Room A" {
		t.Errorf("expected collapsed whitespace in name, got %q", created.Name)
	}
	if created.Description != "Large room with projector" {
		t.Errorf("expected collapsed whitespace in description, got %q", created.Description)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	svc := newTestService(&mockResourceRepository{}, nil)

	err := svc.Create(context.Background(), "user-1", &model.Resource{Name: "   "})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetOwn_EmbedsBookings(t *testing.T) {
	repo := &mockResourceRepository{
		findByUserFunc: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Resource, error) {
			return []*model.Resource{
				{ID: "res-1", Name: "Room A", UserID: userID},
				{ID: "res-2", Name: "Room B", UserID: userID},
			}, nil
		},
		countByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			return 2, nil
		},
	}
	bookings := &mockBookingStore{
		findByResourceFunc: func(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error) {
			if resourceID == "res-1" {
				return []*model.Booking{{ID: 1, ResourceID: resourceID}}, nil
			}
			return []*model.Booking{}, nil
		},
	}
	svc := newTestService(repo, bookings)

	resources, count, err := svc.GetOwn(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
	if len(resources[0].Bookings) != 1 {
		t.Errorf("expected 1 booking on res-1, got %d", len(resources[0].Bookings))
	}
	if len(resources[1].Bookings) != 0 {
		t.Errorf("expected no bookings on res-2, got %d", len(resources[1].Bookings))
	}
}

func TestUpdate_NotOwner(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return &model.Resource{ID: id, Name: "Room A", UserID: "someone-else"}, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Update(context.Background(), "user-1", "res-1", &model.ResourceUpdate{Name: "Hijacked"})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if appErr.Message != "You do not own this resource" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	var gotName string
	var gotDescription *string
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return &model.Resource{ID: id, Name: "Room A", Description: "old", UserID: "user-1"}, nil
		},
		updateFunc: func(ctx context.Context, id string, name string, description *string) error {
			gotName = name
			gotDescription = description
			return nil
		},
	}
	svc := newTestService(repo, nil)

	updated, err := svc.Update(context.Background(), "user-1", "res-1", &model.ResourceUpdate{Name: "Room B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Room B" {
		t.Errorf("expected merged name Room B, got %q", updated.Name)
	}
	if updated.Description != "old" {
		t.Errorf("expected description untouched, got %q", updated.Description)
	}
	if gotName != "Room B" {
		t.Errorf("expected repo update with Room B, got %q", gotName)
	}
	if gotDescription != nil {
		t.Error("description was not edited and must not be written")
	}
}

func TestUpdate_UnknownResource(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return nil, resourceserrors.ErrNotFound
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Update(context.Background(), "user-1", "res-404", &model.ResourceUpdate{Name: "Room B"})
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_CascadesBookings(t *testing.T) {
	var cascaded, deleted bool
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return &model.Resource{ID: id, Name: "Room A", UserID: "user-1"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			if !cascaded {
				t.Error("bookings must be removed before the resource")
			}
			deleted = true
			return nil
		},
	}
	bookings := &mockBookingStore{
		deleteByResourceFunc: func(ctx context.Context, resourceID string) (int64, error) {
			cascaded = true
			return 3, nil
		},
	}
	svc := newTestService(repo, bookings)

	if err := svc.Delete(context.Background(), "user-1", "res-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cascaded || !deleted {
		t.Errorf("expected cascade then delete, got cascaded=%v deleted=%v", cascaded, deleted)
	}
}

func TestDelete_NotOwner_NothingDeleted(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return &model.Resource{ID: id, Name: "Room A", UserID: "someone-else"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			t.Error("delete must not be called for a non-owner")
			return nil
		},
	}
	bookings := &mockBookingStore{
		deleteByResourceFunc: func(ctx context.Context, resourceID string) (int64, error) {
			t.Error("cascade must not run for a non-owner")
			return 0, nil
		},
	}
	svc := newTestService(repo, bookings)

	err := svc.Delete(context.Background(), "user-1", "res-1")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetByID_PublicRead(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return &model.Resource{
				ID:        id,
				Name:      "Room A",
				UserID:    "someone-else",
				CreatedAt: time.Now(),
			}, nil
		},
	}
	svc := newTestService(repo, nil)

	// Reads are not restricted to the owner.
	resource, err := svc.GetByID(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resource.Name != "Room A" {
		t.Errorf("unexpected resource: %+v", resource)
	}
}

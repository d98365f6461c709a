package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	resourceserrors "reservio/internal/resources/errors"
	"reservio/internal/resources/repository"
	"reservio/internal/resources/validator"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/model"
	"reservio/pkg/sanitizer"
)

// Bookings per resource embedded in owner listings.
const maxEmbeddedBookings = 100

// BookingStore is the slice of the bookings repository the resource
// lifecycle needs: embedding bookings on listings and cascading the
// delete.
type BookingStore interface {
	FindByResource(ctx context.Context, resourceID string, limit int, offset int64) ([]*model.Booking, error)
	DeleteByResource(ctx context.Context, resourceID string) (int64, error)
}

type ResourceService interface {
	Create(ctx context.Context, userID string, resource *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetOwn(ctx context.Context, userID string, limit int, offset int64) ([]*model.Resource, int64, error)
	Update(ctx context.Context, userID string, id string, updates *model.ResourceUpdate) (*model.Resource, error)
	Delete(ctx context.Context, userID string, id string) error
}

type resourceService struct {
	repo      repository.ResourceRepository
	bookings  BookingStore
	validator *validator.ResourceValidator
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	bookings BookingStore,
	validator *validator.ResourceValidator,
	cfg *config.Config,
) ResourceService {
	return &resourceService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resourceService) Create(ctx context.Context, userID string, resource *model.Resource) error {
	resource.ID = uuid.New().String()
	resource.UserID = userID
	s.sanitize(resource)

	if err := s.validate(resource); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		s.cfg.Log.Error("Failed to create resource", "error", err)
		return apperrors.Internal("Failed to create resource", err)
	}

	s.cfg.Log.Info("Resource created successfully",
		"id", resource.ID,
		"name", resource.Name,
		"user_id", resource.UserID,
	)
	return nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}

	return resource, nil
}

// GetOwn lists the caller's resources with their bookings embedded so
// the client can render occupancy in one round trip.
func (s *resourceService) GetOwn(ctx context.Context, userID string, limit int, offset int64) ([]*model.Resource, int64, error) {
	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count resources", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count resources", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		resources, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list resources", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve resources", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, resource := range resources {
		bookings, err := s.bookings.FindByResource(ctx, resource.ID, maxEmbeddedBookings, 0)
		if err != nil {
			s.cfg.Log.Warn("Failed to attach bookings to resource",
				"resource_id", resource.ID,
				"error", err,
			)
			continue
		}
		resource.Bookings = bookings
	}

	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, userID string, id string, updates *model.ResourceUpdate) (*model.Resource, error) {
	existing, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Resource update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	s.sanitize(&merged)
	if err := s.validate(&merged); err != nil {
		return nil, err
	}

	var description *string
	if updates.Description != nil {
		description = &merged.Description
	}
	if err := s.repo.Update(ctx, id, merged.Name, description); err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		s.cfg.Log.Error("Failed to update resource", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update resource", err)
	}

	s.cfg.Log.Info("Resource updated successfully", "id", id)
	return &merged, nil
}

// Delete removes the resource and all its bookings in one transaction
// so resource_id never dangles.
func (s *resourceService) Delete(ctx context.Context, userID string, id string) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	var deletedBookings int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		deletedBookings, err = s.bookings.DeleteByResource(sessCtx, id)
		if err != nil {
			return apperrors.Internal("Failed to delete resource bookings", err)
		}
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, resourceserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Resource", id)
			}
			return apperrors.Internal("Failed to delete resource", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete resource", "id", id, "error", err)
		return err
	}

	s.cfg.Log.Info("Resource deleted successfully",
		"id", id,
		"cascaded_bookings", deletedBookings,
	)
	return nil
}

// --- Helpers ---

func (s *resourceService) sanitize(resource *model.Resource) {
	resource.Name = sanitizer.NormalizeName(resource.Name)
	resource.Description = sanitizer.NormalizeDescription(resource.Description)
}

func (s *resourceService) validate(resource *model.Resource) error {
	if err := s.validator.Validate(resource); err != nil {
		s.cfg.Log.Warn("Resource validation failed", "error", err)
		return apperrors.Validation("Resource validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *resourceService) fetchOwned(ctx context.Context, userID string, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}

	if resource.UserID != userID {
		return nil, apperrors.Forbidden("You do not own this resource")
	}

	return resource, nil
}

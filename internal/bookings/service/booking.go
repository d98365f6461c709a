package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "reservio/internal/bookings/errors"
	"reservio/internal/bookings/repository"
	"reservio/internal/bookings/validator"
	resourceserrors "reservio/internal/resources/errors"
	"reservio/pkg/config"
	apperrors "reservio/pkg/errors"
	"reservio/pkg/kafka"
	"reservio/pkg/model"
)

const eventSource = "reservio-api"

// ResourceFinder is the slice of the resources repository the booking
// pipeline needs: existence checks and summaries to embed on reads.
type ResourceFinder interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
}

type BookingService interface {
	Create(ctx context.Context, userID string, booking *model.Booking) error
	GetByID(ctx context.Context, userID string, id string) (*model.Booking, error)
	GetOwn(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, userID string, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, userID string, id string) error
	CheckAvailability(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	resources ResourceFinder
	validator *validator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	resources ResourceFinder,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		resources: resources,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, userID string, booking *model.Booking) error {
	booking.UserID = userID
	s.normalizeTimes(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	resource, err := s.findResource(ctx, booking.ResourceID)
	if err != nil {
		return err
	}

	// Advisory lock so two concurrent requests for the same slot
	// serialize before the optimistic check inside the transaction.
	lockID, err := s.acquireSlotLock(ctx, booking.ResourceID, booking.StartTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyAvailability(sessCtx, booking.ResourceID, booking.StartTime, booking.EndTime, 0); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	booking.Resource = resource
	s.publish(ctx, model.EventBookingCreated, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, userID string, id string) (*model.Booking, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid booking ID format")
	}

	booking, err := s.fetchOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if resource, err := s.resources.FindByID(ctx, booking.ResourceID); err == nil {
		booking.Resource = resource
	}

	return booking, nil
}

func (s *bookingService) GetOwn(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.attachResources(ctx, bookings)
	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, userID string, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid booking ID format")
	}

	existing, err := s.fetchOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", bookingID, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	s.normalizeTimes(&merged)
	if err := s.validate(&merged); err != nil {
		return nil, err
	}

	lockID, err := s.acquireSlotLock(ctx, merged.ResourceID, merged.StartTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The booking being edited must not conflict with itself.
		if err := s.verifyAvailability(sessCtx, merged.ResourceID, merged.StartTime, merged.EndTime, merged.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateTimes(sessCtx, merged.ID, merged.StartTime, merged.EndTime); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", bookingID, "error", err)
		return nil, err
	}

	s.publish(ctx, model.EventBookingUpdated, &merged)

	s.cfg.Log.Info("Booking updated successfully", "id", bookingID)
	return &merged, nil
}

func (s *bookingService) Delete(ctx context.Context, userID string, id string) error {
	bookingID, err := parseBookingID(id)
	if err != nil {
		return apperrors.InvalidInput("Invalid booking ID format")
	}

	existing, err := s.fetchOwned(ctx, userID, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.publish(ctx, model.EventBookingCancelled, existing)

	s.cfg.Log.Info("Booking deleted successfully", "id", bookingID)
	return nil
}

// CheckAvailability is the dry-run conflict probe behind the
// availability endpoint. It rounds the candidate the same way the
// write path does and reports whether it would be accepted.
func (s *bookingService) CheckAvailability(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	if resourceID == "" {
		return false, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	candidate := &model.Booking{StartTime: start, EndTime: end}
	s.normalizeTimes(candidate)
	if candidate.EndTime.Before(candidate.StartTime) {
		return false, apperrors.InvalidInput("end time must be after start time")
	}

	if _, err := s.findResource(ctx, resourceID); err != nil {
		return false, err
	}

	err := s.verifyAvailability(ctx, resourceID, candidate.StartTime, candidate.EndTime, 0)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeConflict {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// --- Helpers ---

// normalizeTimes applies the slot grain: seconds dropped, minutes
// rounded up to the grain. A missing end collapses the booking to a
// single instant at its start.
func (s *bookingService) normalizeTimes(b *model.Booking) {
	b.StartTime = roundToSlot(b.StartTime.UTC(), s.cfg.SlotGrainMinutes)
	if b.EndTime.IsZero() {
		b.EndTime = b.StartTime
		return
	}
	b.EndTime = roundToSlot(b.EndTime.UTC(), s.cfg.SlotGrainMinutes)
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyAvailability applies the overlap predicate to the candidate
// against every stored booking in the window, skipping excludeID so an
// update never conflicts with the booking being edited.
func (s *bookingService) verifyAvailability(ctx context.Context, resourceID string, start, end time.Time, excludeID int64) error {
	existing, err := s.repo.FindOverlapping(ctx, resourceID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if overlaps(start, end, b.StartTime, b.EndTime) {
			return apperrors.Conflict("This time slot is already booked")
		}
	}
	return nil
}

func (s *bookingService) fetchOwned(ctx context.Context, userID string, bookingID int64) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", strconv.FormatInt(bookingID, 10))
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.UserID != userID {
		return nil, apperrors.Forbidden("You do not own this booking")
	}

	return booking, nil
}

func (s *bookingService) findResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", resourceID)
		}
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}
	return resource, nil
}

// attachResources embeds a resource summary on each booking, fetching
// each distinct resource once.
func (s *bookingService) attachResources(ctx context.Context, bookings []*model.Booking) {
	cache := map[string]*model.Resource{}
	for _, b := range bookings {
		resource, ok := cache[b.ResourceID]
		if !ok {
			var err error
			resource, err = s.resources.FindByID(ctx, b.ResourceID)
			if err != nil {
				s.cfg.Log.Warn("Failed to attach resource to booking",
					"booking_id", b.ID,
					"resource_id", b.ResourceID,
					"error", err,
				)
				continue
			}
			cache[b.ResourceID] = resource
		}
		b.Resource = resource
	}
}

// acquireSlotLock inserts an advisory lock keyed by the slot
// coordinates. A duplicate key means another request holds the slot.
// The lock covers one (resource, start) pair only; overlapping creates
// with different starts are arbitrated by the transactional overlap
// check instead.
func (s *bookingService) acquireSlotLock(ctx context.Context, resourceID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s_%d", resourceID, startTime.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	event := model.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		ResourceID: b.ResourceID,
		UserID:     b.UserID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		OccurredAt: time.Now().UTC(),
	}

	msg := kafka.NewMessage().
		WithKey(b.ResourceID).
		WithValue(event).
		WithEventType(eventType).
		WithSource(eventSource).
		Build()

	// Event delivery never fails the booking write.
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func parseBookingID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, bookingserrors.ErrInvalidID
	}
	return n, nil
}

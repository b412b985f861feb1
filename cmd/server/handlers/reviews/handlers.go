package reviews

import (
	"context"
	"errors"

	"trailhead/cmd/server/handlers/handlerutil"
	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/logger"
	"trailhead/internal/query"
	"trailhead/internal/services/auth"
	"trailhead/internal/services/reviews"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ReviewsService defines the interface for the reviews service
type ReviewsService interface {
	Create(ctx context.Context, userID, tourID bson.ObjectID, req reviews.CreateReviewRequest) (*reviews.Review, error)
	List(ctx context.Context, tourID bson.ObjectID, params map[string]string) ([]*reviews.Review, error)
	Get(ctx context.Context, id bson.ObjectID) (*reviews.Review, error)
	Update(ctx context.Context, actor *auth.User, id bson.ObjectID, patch reviews.UpdateReview) (*reviews.Review, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

// Handlers contains the reviews HTTP handlers
type Handlers struct {
	reviewsService ReviewsService
	validator      *validator.Validate
}

// NewHandlers creates new reviews handlers
func NewHandlers(reviewsService ReviewsService, validator *validator.Validate) *Handlers {
	return &Handlers{
		reviewsService: reviewsService,
		validator:      validator,
	}
}

// tourIDFromRoute resolves the tour id for a review: the nested route's
// :tourId parameter wins, otherwise the body's tour_id is used.
func tourIDFromRoute(c *fiber.Ctx, bodyTourID string) (bson.ObjectID, error) {
	raw := c.Params("tourId")
	if raw == "" {
		raw = bodyTourID
	}
	if raw == "" {
		return bson.ObjectID{}, httperr.Fail(httperr.New(fiber.StatusBadRequest, "missing tour id"))
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, httperr.Fail(httperr.New(fiber.StatusBadRequest, "invalid tour id"))
	}
	return id, nil
}

// List returns reviews, optionally scoped to one tour by the nested route
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Param tourId path string false "Tour ID (nested route)"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Security BearerAuth
// @Router /reviews [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	var tourID bson.ObjectID
	if raw := c.Params("tourId"); raw != "" {
		var err error
		tourID, err = bson.ObjectIDFromHex(raw)
		if err != nil {
			return httperr.Fail(httperr.New(fiber.StatusBadRequest, "invalid tour id"))
		}
	}

	list, err := h.reviewsService.List(c.Context(), tourID, handlerutil.QueryParams(c))
	if err != nil {
		if query.IsShapeError(err) {
			return httperr.InvalidInput(err)
		}
		logger.L().Error("list reviews service failed", "handler", "ListReviews", "error", err)
		return err
	}
	return handlerutil.List(c, "reviews", list)
}

// Get returns one review
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} handlerutil.Envelope
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /reviews/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "GetReview", reviews.ErrReviewNotFound)
	if err != nil {
		return err
	}

	review, err := h.reviewsService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, reviews.ErrReviewNotFound) {
			return handlerutil.NotFoundError(reviews.ErrReviewNotFound)
		}
		logger.L().Error("get review service failed", "handler", "GetReview", "error", err)
		return err
	}
	return handlerutil.OK(c, "review", review)
}

// Create adds a review authored by the current user
// @Summary Create a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param tourId path string false "Tour ID (nested route)"
// @Param request body reviews.CreateReviewRequest true "Review"
// @Success 201 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Security BearerAuth
// @Router /tours/{tourId}/reviews [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}

	var req reviews.CreateReviewRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateReview"); err != nil {
		return err
	}

	tourID, err := tourIDFromRoute(c, req.TourID)
	if err != nil {
		return err
	}

	review, err := h.reviewsService.Create(c.Context(), user.ID, tourID, req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreateReview", map[error]int{
			reviews.ErrAlreadyReviewed: fiber.StatusConflict,
		})
	}
	return handlerutil.Created(c, "review", review)
}

// Update patches a review; only its author or an admin may do so
// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body reviews.UpdateReview true "Review patch"
// @Success 200 {object} handlerutil.Envelope
// @Failure 403 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /reviews/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	user, err := handlerutil.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := handlerutil.ExtractObjectID(c, "id", "UpdateReview", reviews.ErrReviewNotFound)
	if err != nil {
		return err
	}

	var patch reviews.UpdateReview
	if err := handlerutil.ParseAndValidateBody(c, &patch, h.validator, "UpdateReview"); err != nil {
		return err
	}

	review, err := h.reviewsService.Update(c.Context(), user, id, patch)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateReview", map[error]int{
			reviews.ErrReviewNotFound: fiber.StatusNotFound,
			reviews.ErrNotAuthor:      fiber.StatusForbidden,
		})
	}
	return handlerutil.OK(c, "review", review)
}

// Delete removes a review
// @Summary Delete a review
// @Tags reviews
// @Param id path string true "Review ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /reviews/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "DeleteReview", reviews.ErrReviewNotFound)
	if err != nil {
		return err
	}

	if err := h.reviewsService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, reviews.ErrReviewNotFound) {
			return handlerutil.NotFoundError(reviews.ErrReviewNotFound)
		}
		logger.L().Error("delete review service failed", "handler", "DeleteReview", "error", err)
		return err
	}
	return handlerutil.NoContent(c)
}

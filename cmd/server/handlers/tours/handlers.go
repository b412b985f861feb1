package tours

import (
	"context"
	"errors"

	"trailhead/cmd/server/handlers/handlerutil"
	"trailhead/cmd/server/handlers/httperr"
	"trailhead/internal/logger"
	"trailhead/internal/query"
	"trailhead/internal/services/tours"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ToursService defines the interface for the tours service
type ToursService interface {
	Create(ctx context.Context, req tours.CreateTourRequest) (*tours.Tour, error)
	List(ctx context.Context, params map[string]string) ([]*tours.Tour, error)
	Get(ctx context.Context, id bson.ObjectID) (*tours.Tour, error)
	Update(ctx context.Context, id bson.ObjectID, patch tours.UpdateTour) (*tours.Tour, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Stats(ctx context.Context) ([]tours.DifficultyStats, error)
}

// Handlers contains the tours HTTP handlers
type Handlers struct {
	toursService ToursService
	validator    *validator.Validate
}

// NewHandlers creates new tours handlers
func NewHandlers(toursService ToursService, validator *validator.Validate) *Handlers {
	return &Handlers{
		toursService: toursService,
		validator:    validator,
	}
}

// List returns tours shaped by the query string
// @Summary List tours
// @Tags tours
// @Produce json
// @Param sort query string false "Comma-separated sort fields, minus prefix for descending"
// @Param fields query string false "Comma-separated projection fields"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Router /tours [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	list, err := h.toursService.List(c.Context(), handlerutil.QueryParams(c))
	if err != nil {
		if query.IsShapeError(err) {
			return httperr.InvalidInput(err)
		}
		logger.L().Error("list tours service failed", "handler", "ListTours", "error", err)
		return err
	}
	return handlerutil.List(c, "tours", list)
}

// Get returns one tour with its guides populated
// @Summary Get a tour
// @Tags tours
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} handlerutil.Envelope
// @Failure 404 {object} httperr.E
// @Router /tours/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "GetTour", tours.ErrTourNotFound)
	if err != nil {
		return err
	}

	tour, err := h.toursService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, tours.ErrTourNotFound) {
			return handlerutil.NotFoundError(tours.ErrTourNotFound)
		}
		logger.L().Error("get tour service failed", "handler", "GetTour", "error", err)
		return err
	}
	return handlerutil.OK(c, "tour", tour)
}

// Create adds a new tour
// @Summary Create a tour
// @Tags tours
// @Accept json
// @Produce json
// @Param request body tours.CreateTourRequest true "Tour"
// @Success 201 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Security BearerAuth
// @Router /tours [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req tours.CreateTourRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "CreateTour"); err != nil {
		return err
	}

	tour, err := h.toursService.Create(c.Context(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "CreateTour", map[error]int{
			tours.ErrDuplicateName:   fiber.StatusConflict,
			tours.ErrInvalidDiscount: fiber.StatusBadRequest,
		})
	}
	return handlerutil.Created(c, "tour", tour)
}

// Update patches a tour
// @Summary Update a tour
// @Tags tours
// @Accept json
// @Produce json
// @Param id path string true "Tour ID"
// @Param request body tours.UpdateTour true "Tour patch"
// @Success 200 {object} handlerutil.Envelope
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /tours/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "UpdateTour", tours.ErrTourNotFound)
	if err != nil {
		return err
	}

	var patch tours.UpdateTour
	if err := handlerutil.ParseAndValidateBody(c, &patch, h.validator, "UpdateTour"); err != nil {
		return err
	}

	tour, err := h.toursService.Update(c.Context(), id, patch)
	if err != nil {
		return handlerutil.HandleServiceError(err, "UpdateTour", map[error]int{
			tours.ErrTourNotFound:    fiber.StatusNotFound,
			tours.ErrDuplicateName:   fiber.StatusConflict,
			tours.ErrInvalidDiscount: fiber.StatusBadRequest,
		})
	}
	return handlerutil.OK(c, "tour", tour)
}

// Delete removes a tour
// @Summary Delete a tour
// @Tags tours
// @Param id path string true "Tour ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Security BearerAuth
// @Router /tours/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.ExtractObjectID(c, "id", "DeleteTour", tours.ErrTourNotFound)
	if err != nil {
		return err
	}

	if err := h.toursService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, tours.ErrTourNotFound) {
			return handlerutil.NotFoundError(tours.ErrTourNotFound)
		}
		logger.L().Error("delete tour service failed", "handler", "DeleteTour", "error", err)
		return err
	}
	return handlerutil.NoContent(c)
}

// Stats aggregates non-secret tours by difficulty
// @Summary Tour statistics grouped by difficulty
// @Tags tours
// @Produce json
// @Success 200 {object} handlerutil.Envelope
// @Router /tours/stats [get]
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.toursService.Stats(c.Context())
	if err != nil {
		logger.L().Error("tour stats service failed", "handler", "TourStats", "error", err)
		return err
	}
	return handlerutil.OK(c, "stats", stats)
}

package tours

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trailhead/internal/query"
	"trailhead/internal/utils/sanitize"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service handles tours business logic
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a new tours service
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateTourRequest represents a tour creation request
type CreateTourRequest struct {
	Name          string      `json:"name" validate:"required,min=10,max=40"`
	Duration      int         `json:"duration" validate:"required,gt=0"`
	Difficulty    string      `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	MaxGroupSize  int         `json:"max_group_size" validate:"required,gt=0"`
	Price         float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount float64     `json:"price_discount" validate:"omitempty,gte=0"`
	Summary       string      `json:"summary" validate:"required"`
	Description   string      `json:"description"`
	ImageCover    string      `json:"image_cover" validate:"required"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"start_dates"`
	StartLocation *GeoPoint   `json:"start_location"`
	Locations     []GeoPoint  `json:"locations"`
	Secret        bool        `json:"secret"`
	Guides        []string    `json:"guides" validate:"omitempty,dive,len=24"`
}

// Create validates the business rules (discount strictly below price), derives
// the slug from the name and persists the tour.
func (s *Service) Create(ctx context.Context, req CreateTourRequest) (*Tour, error) {
	if req.PriceDiscount > 0 && req.PriceDiscount >= req.Price {
		return nil, ErrInvalidDiscount
	}

	guides, err := parseGuideIDs(req.Guides)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tour := &Tour{
		ID:             bson.NewObjectID(),
		Name:           sanitize.Clean(req.Name),
		Slug:           slug.Make(req.Name),
		Duration:       req.Duration,
		Difficulty:     req.Difficulty,
		MaxGroupSize:   req.MaxGroupSize,
		RatingsAverage: 4.5,
		Price:          req.Price,
		PriceDiscount:  req.PriceDiscount,
		Summary:        sanitize.Clean(req.Summary),
		Description:    sanitize.Clean(req.Description),
		ImageCover:     req.ImageCover,
		Images:         req.Images,
		StartDates:     req.StartDates,
		StartLocation:  req.StartLocation,
		Locations:      req.Locations,
		Secret:         req.Secret,
		Guides:         guides,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, tour); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, ErrDuplicateName
		}
		s.log.Error("failed to create tour", "error", err)
		return nil, errors.New("failed to create tour")
	}

	return tour, nil
}

// List returns tours shaped by the request's query parameters; secret tours
// are excluded by the repository scope.
func (s *Service) List(ctx context.Context, params map[string]string) ([]*Tour, error) {
	shaper := query.NewShaper(FilterFields).Apply(params)
	return s.repo.List(ctx, shaper)
}

// Get returns one tour with its guides populated.
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*Tour, error) {
	return s.repo.FindByID(ctx, id, true)
}

// Update applies a partial update. A name change recomputes the slug, and the
// discount rule is re-validated against the effective price.
func (s *Service) Update(ctx context.Context, id bson.ObjectID, patch UpdateTour) (*Tour, error) {
	current, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	price := current.Price
	if patch.Price != nil {
		price = *patch.Price
	}
	discount := current.PriceDiscount
	if patch.PriceDiscount != nil {
		discount = *patch.PriceDiscount
	}
	if discount > 0 && discount >= price {
		return nil, ErrInvalidDiscount
	}

	if patch.Name != nil {
		clean := sanitize.Clean(*patch.Name)
		newSlug := slug.Make(clean)
		patch.Name = &clean
		patch.Slug = &newSlug
	}
	if patch.Summary != nil {
		clean := sanitize.Clean(*patch.Summary)
		patch.Summary = &clean
	}
	if patch.Description != nil {
		clean := sanitize.Clean(*patch.Description)
		patch.Description = &clean
	}
	if patch.Guides != nil {
		ids, err := parseGuideIDs(*patch.Guides)
		if err != nil {
			return nil, err
		}
		patch.GuideIDs = &ids
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrTourNotFound) || errors.Is(err, ErrDuplicateName) {
			return nil, err
		}
		s.log.Error("failed to update tour", "error", err, "tour_id", id.Hex())
		return nil, errors.New("failed to update tour")
	}
	return updated, nil
}

// Delete removes a tour for good.
func (s *Service) Delete(ctx context.Context, id bson.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Stats aggregates non-secret tours by difficulty.
func (s *Service) Stats(ctx context.Context) ([]DifficultyStats, error) {
	return s.repo.Stats(ctx)
}

func parseGuideIDs(hexes []string) ([]bson.ObjectID, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	ids := make([]bson.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := bson.ObjectIDFromHex(h)
		if err != nil {
			return nil, errors.New("invalid guide id: " + h)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

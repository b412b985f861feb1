package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trailhead/internal/query"
	"trailhead/internal/services/auth"
	"trailhead/internal/utils/sanitize"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// defaultAverage is the rating a tour shows before anyone has reviewed it.
const defaultAverage = 4.5

// Service handles reviews business logic
type Service struct {
	repo      Repository
	tourStats TourStatsWriter
	log       *slog.Logger
}

// NewService creates a new reviews service
func NewService(repo Repository, tourStats TourStatsWriter, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tourStats: tourStats,
		log:       log,
	}
}

// CreateReviewRequest represents a review creation request. The author is
// always the authenticated user; the tour may come from the nested route.
type CreateReviewRequest struct {
	TourID string  `json:"tour_id" validate:"omitempty,len=24"`
	Rating float64 `json:"rating" validate:"min=0,max=5"`
	Text   string  `json:"review" validate:"required,min=1,max=100"`
}

// Create persists a review stamped with the authenticated author, then
// recomputes the tour's rating aggregate.
func (s *Service) Create(ctx context.Context, userID, tourID bson.ObjectID, req CreateReviewRequest) (*Review, error) {
	now := time.Now()
	review := &Review{
		ID:        bson.NewObjectID(),
		TourID:    tourID,
		UserID:    userID,
		Rating:    req.Rating,
		Text:      sanitize.Clean(req.Text),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		s.log.Error("failed to create review", "error", err, "user_id", userID.Hex())
		return nil, errors.New("failed to create review")
	}

	s.refreshTourStats(ctx, tourID)

	return review, nil
}

// List returns reviews shaped by query parameters, author populated. A
// non-zero tourID (from the nested route) constrains the result.
func (s *Service) List(ctx context.Context, tourID bson.ObjectID, params map[string]string) ([]*Review, error) {
	shaper := query.NewShaper(FilterFields).Apply(params)
	if !tourID.IsZero() {
		shaper.Criteria()["tour_id"] = tourID
	}

	list, err := s.repo.List(ctx, shaper)
	if err != nil {
		return nil, err
	}
	if err := s.repo.PopulateAuthors(ctx, list); err != nil {
		s.log.Warn("failed to populate review authors", "error", err)
	}
	return list, nil
}

// Get returns a single review with its author populated.
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.PopulateAuthors(ctx, []*Review{review}); err != nil {
		s.log.Warn("failed to populate review author", "error", err)
	}
	return review, nil
}

// Update patches a review. Non-admins may only touch their own.
func (s *Service) Update(ctx context.Context, actor *auth.User, id bson.ObjectID, patch UpdateReview) (*Review, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != auth.RoleAdmin && current.UserID != actor.ID {
		return nil, ErrNotAuthor
	}

	if patch.Text != nil {
		clean := sanitize.Clean(*patch.Text)
		patch.Text = &clean
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		s.refreshTourStats(ctx, updated.TourID)
	}
	return updated, nil
}

// Delete removes a review and recomputes the tour's aggregate.
func (s *Service) Delete(ctx context.Context, id bson.ObjectID) error {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshTourStats(ctx, review.TourID)
	return nil
}

// refreshTourStats is best effort: a failed aggregate write never fails the
// review operation itself, it just logs.
func (s *Service) refreshTourStats(ctx context.Context, tourID bson.ObjectID) {
	count, avg, err := s.repo.RatingStats(ctx, tourID)
	if err != nil {
		s.log.Warn("failed to aggregate ratings", "error", err, "tour_id", tourID.Hex())
		return
	}
	if count == 0 {
		avg = defaultAverage
	}
	if err := s.tourStats.SetRatingStats(ctx, tourID, count, avg); err != nil {
		s.log.Warn("failed to store rating stats", "error", err, "tour_id", tourID.Hex())
	}
}

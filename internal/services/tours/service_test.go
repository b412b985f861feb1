package tours

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"trailhead/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, tour *Tour) error {
	args := m.Called(ctx, tour)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, shaper *query.Shaper) ([]*Tour, error) {
	args := m.Called(ctx, shaper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Tour), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id bson.ObjectID, populateGuides bool) (*Tour, error) {
	args := m.Called(ctx, id, populateGuides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tour), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id bson.ObjectID, patch UpdateTour) (*Tour, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tour), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Stats(ctx context.Context) ([]DifficultyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DifficultyStats), args.Error(1)
}

func (m *MockRepository) SetRatingStats(ctx context.Context, id bson.ObjectID, quantity int64, average float64) error {
	args := m.Called(ctx, id, quantity, average)
	return args.Error(0)
}

func validCreateReq() CreateTourRequest {
	return CreateTourRequest{
		Name:         "The Forest Hiker Tour",
		Duration:     5,
		Difficulty:   DifficultyEasy,
		MaxGroupSize: 25,
		Price:        497,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestService_Create(t *testing.T) {
	t.Run("derives slug and defaults", func(t *testing.T) {
		repo := new(MockRepository)
		var created *Tour
		repo.On("Create", mock.Anything, mock.AnythingOfType("*tours.Tour")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*Tour)
			}).Return(nil)

		service := NewService(repo, silentLogger)
		tour, err := service.Create(context.Background(), validCreateReq())
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "the-forest-hiker-tour", tour.Slug)
		assert.Equal(t, 4.5, tour.RatingsAverage)
		assert.Zero(t, tour.RatingsQuantity)
		assert.False(t, tour.Secret)
		repo.AssertExpectations(t)
	})

	t.Run("discount must stay below price", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, silentLogger)

		req := validCreateReq()
		req.PriceDiscount = 497
		_, err := service.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidDiscount)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("zero discount allowed", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		service := NewService(repo, silentLogger)

		req := validCreateReq()
		req.PriceDiscount = 0
		_, err := service.Create(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("duplicate name surfaces", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateName)
		service := NewService(repo, silentLogger)

		_, err := service.Create(context.Background(), validCreateReq())
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("strips markup from text fields", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		service := NewService(repo, silentLogger)

		req := validCreateReq()
		req.Summary = "<script>alert(1)</script>A lovely walk"
		tour, err := service.Create(context.Background(), req)
		require.NoError(t, err)
		assert.NotContains(t, tour.Summary, "<script>")
	})

	t.Run("bad guide id rejected", func(t *testing.T) {
		repo := new(MockRepository)
		service := NewService(repo, silentLogger)

		req := validCreateReq()
		req.Guides = []string{"zzzzzzzzzzzzzzzzzzzzzzzz"}
		_, err := service.Create(context.Background(), req)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Create")
	})
}

func TestService_Update(t *testing.T) {
	id := bson.NewObjectID()
	current := &Tour{ID: id, Name: "The Forest Hiker Tour", Price: 497, PriceDiscount: 0}

	ptrF := func(v float64) *float64 { return &v }
	ptrS := func(v string) *string { return &v }

	t.Run("name change recomputes slug", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, id, false).Return(current, nil)

		var got UpdateTour
		repo.On("Update", mock.Anything, id, mock.AnythingOfType("tours.UpdateTour")).
			Run(func(args mock.Arguments) {
				got = args.Get(2).(UpdateTour)
			}).Return(current, nil)

		service := NewService(repo, silentLogger)
		_, err := service.Update(context.Background(), id, UpdateTour{Name: ptrS("The Snow Adventurer Tour")})
		require.NoError(t, err)
		require.NotNil(t, got.Slug)
		assert.Equal(t, "the-snow-adventurer-tour", *got.Slug)
	})

	t.Run("discount checked against effective price", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, id, false).Return(current, nil)

		service := NewService(repo, silentLogger)
		// Current price is 497; a 600 discount alone is invalid.
		_, err := service.Update(context.Background(), id, UpdateTour{PriceDiscount: ptrF(600)})
		assert.ErrorIs(t, err, ErrInvalidDiscount)

		// Raising the price in the same patch makes it valid.
		repo2 := new(MockRepository)
		repo2.On("FindByID", mock.Anything, id, false).Return(current, nil)
		repo2.On("Update", mock.Anything, id, mock.Anything).Return(current, nil)
		service2 := NewService(repo2, silentLogger)
		_, err = service2.Update(context.Background(), id, UpdateTour{
			Price:         ptrF(1000),
			PriceDiscount: ptrF(600),
		})
		assert.NoError(t, err)
	})

	t.Run("missing tour", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, id, false).Return(nil, ErrTourNotFound)

		service := NewService(repo, silentLogger)
		_, err := service.Update(context.Background(), id, UpdateTour{})
		assert.ErrorIs(t, err, ErrTourNotFound)
	})
}

func TestService_List_ShapeErrors(t *testing.T) {
	repo := new(MockRepository)
	repo.On("List", mock.Anything, mock.AnythingOfType("*query.Shaper")).
		Return(nil, query.ErrUnknownField)

	service := NewService(repo, silentLogger)
	_, err := service.List(context.Background(), map[string]string{"password_hash": "x"})
	assert.ErrorIs(t, err, query.ErrUnknownField)
}

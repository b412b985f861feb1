package tours

import (
	"time"

	"trailhead/internal/query"
	"trailhead/internal/services/auth"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Difficulty levels a tour may carry.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// GeoPoint is a GeoJSON point with the descriptive fields the itinerary
// needs. Day is only meaningful for stops along the route.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type" example:"Point"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // longitude, latitude
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

// GuideRef is the populated shape of a tour guide reference.
type GuideRef struct {
	ID    bson.ObjectID `bson:"_id" json:"id"`
	Name  string        `bson:"name" json:"name"`
	Photo string        `bson:"photo,omitempty" json:"photo,omitempty"`
	Role  auth.Role     `bson:"role" json:"role"`
}

// Tour is a bookable item. Secret tours are hidden from every unprivileged
// retrieval path by the repository scopes.
type Tour struct {
	ID              bson.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string          `bson:"name" json:"name"`
	Slug            string          `bson:"slug" json:"slug"`
	Duration        int             `bson:"duration" json:"duration"`
	Difficulty      string          `bson:"difficulty" json:"difficulty"`
	MaxGroupSize    int             `bson:"max_group_size" json:"max_group_size"`
	RatingsQuantity int64           `bson:"ratings_quantity" json:"ratings_quantity"`
	RatingsAverage  float64         `bson:"ratings_average" json:"ratings_average"`
	Price           float64         `bson:"price" json:"price"`
	PriceDiscount   float64         `bson:"price_discount,omitempty" json:"price_discount,omitempty"`
	Summary         string          `bson:"summary" json:"summary"`
	Description     string          `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string          `bson:"image_cover" json:"image_cover"`
	Images          []string        `bson:"images,omitempty" json:"images,omitempty"`
	StartDates      []time.Time     `bson:"start_dates,omitempty" json:"start_dates,omitempty"`
	StartLocation   *GeoPoint       `bson:"start_location,omitempty" json:"start_location,omitempty"`
	Locations       []GeoPoint      `bson:"locations,omitempty" json:"locations,omitempty"`
	Secret          bool            `bson:"secret" json:"-"`
	Guides          []bson.ObjectID `bson:"guides,omitempty" json:"guides,omitempty"`
	GuideDetails    []GuideRef      `bson:"-" json:"guide_details,omitempty"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
}

// UpdateTour represents the fields that can be updated on a tour. The slug is
// set by the service whenever the name changes, never by callers.
type UpdateTour struct {
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=10,max=40"`
	Slug          *string      `json:"-"`
	Duration      *int         `json:"duration,omitempty" validate:"omitempty,gt=0"`
	Difficulty    *string      `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium difficult"`
	MaxGroupSize  *int         `json:"max_group_size,omitempty" validate:"omitempty,gt=0"`
	Price         *float64     `json:"price,omitempty" validate:"omitempty,gt=0"`
	PriceDiscount *float64     `json:"price_discount,omitempty" validate:"omitempty,gte=0"`
	Summary       *string      `json:"summary,omitempty" validate:"omitempty,min=1"`
	Description   *string      `json:"description,omitempty"`
	ImageCover    *string      `json:"image_cover,omitempty"`
	Images        *[]string    `json:"images,omitempty"`
	StartDates    *[]time.Time `json:"start_dates,omitempty"`
	StartLocation *GeoPoint    `json:"start_location,omitempty"`
	Locations     *[]GeoPoint  `json:"locations,omitempty"`
	Secret        *bool        `json:"secret,omitempty"`
	Guides        *[]string    `json:"guides,omitempty" validate:"omitempty,dive,len=24"`

	// GuideIDs is the parsed form of Guides, set by the service.
	GuideIDs *[]bson.ObjectID `json:"-"`
}

// DifficultyStats is one bucket of the by-difficulty aggregation.
type DifficultyStats struct {
	Difficulty string  `bson:"_id" json:"difficulty"`
	NumTours   int64   `bson:"num_tours" json:"num_tours"`
	NumRatings int64   `bson:"num_ratings" json:"num_ratings"`
	AvgRating  float64 `bson:"avg_rating" json:"avg_rating"`
	AvgPrice   float64 `bson:"avg_price" json:"avg_price"`
	MinPrice   float64 `bson:"min_price" json:"min_price"`
	MaxPrice   float64 `bson:"max_price" json:"max_price"`
}

// FilterFields is the query-shaper allow-list for the tours collection.
var FilterFields = map[string]query.Kind{
	"name":             query.String,
	"slug":             query.String,
	"duration":         query.Number,
	"difficulty":       query.String,
	"max_group_size":   query.Number,
	"ratings_quantity": query.Number,
	"ratings_average":  query.Number,
	"price":            query.Number,
	"price_discount":   query.Number,
}

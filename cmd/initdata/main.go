// Command initdata fills the database with demo content: an admin account, a
// handful of guides and regular users, tours and reviews. It talks to Mongo
// directly because tour creation is restricted to staff roles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	mongoClient "trailhead/internal/clients/mongo"
	"trailhead/internal/config"
	"trailhead/internal/logger"
	"trailhead/internal/services/auth"
	"trailhead/internal/services/reviews"
	"trailhead/internal/services/tours"
	"trailhead/internal/utils/crypto"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	adminEmail = flag.String("admin-email", env("ADMIN_EMAIL", "admin@example.com"), "Admin e-mail")
	adminPass  = flag.String("admin-pass", env("ADMIN_PASSWORD", "Password123"), "Admin password")
	nUsers     = flag.Int("users", envInt("USERS", 10), "How many regular users to create")
	nTours     = flag.Int("tours", envInt("TOURS", 20), "How many tours to create")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscan(v, &i); err == nil && i > 0 {
			return i
		}
	}
	return def
}

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	logg, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	if _, _, err := mongoClient.Init(ctx, cfg, logg); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	defer func() { _ = mongoClient.Shutdown(ctx) }()

	usersRepo, err := mongoClient.NewUsersRepo(ctx, mongoClient.DB())
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	toursRepo, err := mongoClient.NewToursRepo(ctx, mongoClient.DB())
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	reviewsRepo, err := mongoClient.NewReviewsRepo(ctx, mongoClient.DB())
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Printf("Seeding %s (users=%d tours=%d)\n", cfg.MongoDBName, *nUsers, *nTours)

	if err := seedUser(ctx, usersRepo, cfg, *adminEmail, *adminPass, "Site Admin", auth.RoleAdmin); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	fmt.Println("• admin ready")

	guides := make([]bson.ObjectID, 0, 4)
	for i := 0; i < 4; i++ {
		role := auth.RoleGuide
		if i == 0 {
			role = auth.RoleLeadGuide
		}
		id, err := seedFakeUser(ctx, usersRepo, cfg, role)
		if err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}
		guides = append(guides, id)
	}
	fmt.Println("• guides ready")

	userIDs := make([]bson.ObjectID, 0, *nUsers)
	for i := 0; i < *nUsers; i++ {
		id, err := seedFakeUser(ctx, usersRepo, cfg, auth.RoleUser)
		if err != nil {
			fmt.Fprintln(os.Stderr, "FATAL:", err)
			os.Exit(1)
		}
		userIDs = append(userIDs, id)
	}
	fmt.Printf("• %d users ready\n", len(userIDs))

	tourIDs, err := seedTours(ctx, toursRepo, guides, *nTours)
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	fmt.Printf("• %d tours ready\n", len(tourIDs))

	if err := seedReviews(ctx, reviewsRepo, toursRepo, tourIDs, userIDs); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
	fmt.Println("✔ done")
}

func seedUser(ctx context.Context, repo *mongoClient.UsersRepo, cfg config.Config, email, password, name string, role auth.Role) error {
	hash, err := crypto.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return err
	}
	now := time.Now()
	err = repo.Create(ctx, &auth.User{
		ID:           bson.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, auth.ErrDuplicate) {
		return nil // already seeded
	}
	return err
}

func seedFakeUser(ctx context.Context, repo *mongoClient.UsersRepo, cfg config.Config, role auth.Role) (bson.ObjectID, error) {
	hash, err := crypto.HashPassword(gofakeit.Password(true, true, true, false, false, 12), cfg.BcryptCost)
	if err != nil {
		return bson.ObjectID{}, err
	}
	now := time.Now()
	user := &auth.User{
		ID:           bson.NewObjectID(),
		Name:         gofakeit.Name(),
		Email:        gofakeit.Email(),
		PasswordHash: hash,
		Photo:        gofakeit.ImageURL(200, 200),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return bson.ObjectID{}, err
	}
	return user.ID, nil
}

var difficulties = []string{tours.DifficultyEasy, tours.DifficultyMedium, tours.DifficultyDifficult}

func seedTours(ctx context.Context, repo *mongoClient.ToursRepo, guides []bson.ObjectID, total int) ([]bson.ObjectID, error) {
	ids := make([]bson.ObjectID, 0, total)
	for i := 0; i < total; i++ {
		name := fmt.Sprintf("The %s %s Tour", gofakeit.AdjectiveDescriptive(), gofakeit.NounConcrete())
		if len(name) > 40 {
			name = name[:40]
		}
		price := float64(gofakeit.Number(200, 3000))
		now := time.Now()
		tour := &tours.Tour{
			ID:             bson.NewObjectID(),
			Name:           name,
			Slug:           slug.Make(name),
			Duration:       gofakeit.Number(3, 21),
			Difficulty:     difficulties[gofakeit.Number(0, 2)],
			MaxGroupSize:   gofakeit.Number(5, 30),
			RatingsAverage: 4.5,
			Price:          price,
			Summary:        gofakeit.Sentence(8),
			Description:    gofakeit.Paragraph(1, 3, 30, " "),
			ImageCover:     gofakeit.ImageURL(1200, 800),
			StartDates:     []time.Time{now.AddDate(0, 1, 0), now.AddDate(0, 3, 0)},
			StartLocation: &tours.GeoPoint{
				Type:        "Point",
				Coordinates: []float64{gofakeit.Longitude(), gofakeit.Latitude()},
				Address:     gofakeit.Address().Address,
				Description: gofakeit.City(),
			},
			Secret:    gofakeit.Number(0, 9) == 0,
			Guides:    []bson.ObjectID{guides[gofakeit.Number(0, len(guides)-1)]},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, tour); err != nil {
			if errors.Is(err, tours.ErrDuplicateName) {
				continue
			}
			return nil, err
		}
		ids = append(ids, tour.ID)
	}
	return ids, nil
}

func seedReviews(ctx context.Context, repo *mongoClient.ReviewsRepo, toursRepo *mongoClient.ToursRepo, tourIDs, userIDs []bson.ObjectID) error {
	if len(tourIDs) == 0 || len(userIDs) == 0 {
		return nil
	}
	for _, tourID := range tourIDs {
		for _, userID := range userIDs {
			if gofakeit.Number(0, 2) != 0 {
				continue // not everyone reviews everything
			}
			now := time.Now()
			err := repo.Create(ctx, &reviews.Review{
				ID:        bson.NewObjectID(),
				TourID:    tourID,
				UserID:    userID,
				Rating:    float64(gofakeit.Number(2, 10)) / 2,
				Text:      gofakeit.Sentence(10),
				CreatedAt: now,
				UpdatedAt: now,
			})
			if err != nil && !errors.Is(err, reviews.ErrAlreadyReviewed) {
				return err
			}
		}

		count, avg, err := repo.RatingStats(ctx, tourID)
		if err != nil {
			return err
		}
		if count > 0 {
			if err := toursRepo.SetRatingStats(ctx, tourID, count, avg); err != nil {
				return err
			}
		}
	}
	return nil
}

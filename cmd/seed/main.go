// Command seed populates the directory database with demo users, businesses
// and moderated reviews. It runs the same services as the API so ratings and
// slugs are derived exactly as they are in production.
//
// Run: go run ./cmd/seed -users 20 -businesses 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/auth"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/config"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/event"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/repository/postgres"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/search/memory"
	"github.com/infLocus/Crowdsourced-Review-Platform/internal/service"
	"github.com/infLocus/Crowdsourced-Review-Platform/migrations"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/database"
	"github.com/infLocus/Crowdsourced-Review-Platform/pkg/logger"
)

const (
	adminEmail   = "admin@example.com"
	seedPassword = "password123"
)

var (
	namePrefixes = []string{"Golden", "Blue", "Corner", "Urban", "Harbor", "Maple", "Summit", "Riverside", "Old Town", "Sunny"}
	nameSuffixes = map[string][]string{
		domain.CategoryRestaurant:    {"Bistro", "Kitchen", "Diner", "Grill", "Noodle Bar"},
		domain.CategoryShop:          {"Books", "Market", "Boutique", "Hardware", "Florist"},
		domain.CategoryService:       {"Plumbing", "Auto Repair", "Cleaners", "Movers", "Tailor"},
		domain.CategoryHealthcare:    {"Dental", "Clinic", "Pharmacy", "Physio", "Eye Care"},
		domain.CategoryEntertainment: {"Cinema", "Bowling", "Escape Room", "Comedy Club", "Arcade"},
		domain.CategoryOther:         {"Co-working", "Studio", "Gallery", "Library", "Workshop"},
	}
	categories = []string{
		domain.CategoryRestaurant, domain.CategoryShop, domain.CategoryService,
		domain.CategoryHealthcare, domain.CategoryEntertainment, domain.CategoryOther,
	}
	cities = []struct{ city, state, zip string }{
		{"Portland", "OR", "97201"},
		{"Austin", "TX", "73301"},
		{"Denver", "CO", "80202"},
		{"Madison", "WI", "53703"},
		{"Raleigh", "NC", "27601"},
	}
	streets = []string{"Main St", "Oak Ave", "Pine Rd", "Market St", "2nd Ave", "Elm St"}

	reviewTitles = map[int][]string{
		1: {"Very disappointing", "Would not return"},
		2: {"Below expectations", "Not great"},
		3: {"It was okay", "Average experience"},
		4: {"Really good", "Would recommend"},
		5: {"Outstanding", "Best in town"},
	}
	reviewBodies = []string{
		"Visited on a weekday afternoon and the staff were attentive from start to finish.",
		"Prices are fair for what you get, although it can get crowded on weekends.",
		"Booked in advance and everything was ready when we arrived. Clean and well run.",
		"Had to wait longer than expected but the end result was worth it overall.",
		"Friendly people and a relaxed atmosphere. I have been back several times since.",
	}
)

func main() {
	users := flag.Int("users", 20, "number of reviewer accounts to create")
	businesses := flag.Int("businesses", 40, "number of businesses to create")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()
	if *users < 1 || *businesses < 0 {
		fmt.Fprintln(os.Stderr, "seed: -users must be at least 1 and -businesses non-negative")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(config.ServiceName+"-seed", cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, *users, *businesses, rand.New(rand.NewPCG(*seed, *seed))); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, userCount, businessCount int, rng *rand.Rand) error {
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	businessRepo := postgres.NewBusinessRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)

	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		log.Info("database already seeded, nothing to do")
		return nil
	}

	// Events are projected in process; the API rebuilds its own index on start.
	projector := event.NewProjector(reviewRepo, businessRepo, memory.New(), nil, log)
	producer := event.NewProducer(event.NewLocalBus(projector.Handle, log), log)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	authService := service.NewAuthService(userRepo, postgres.NewRefreshTokenRepository(pool), jwtManager, log)
	businessService := service.NewBusinessService(businessRepo, reviewRepo, nil, producer, log)
	reviewService := service.NewReviewService(reviewRepo, businessRepo, nil, producer, log)
	adminService := service.NewAdminService(reviewRepo, businessRepo, userRepo, nil, producer, log)

	// --- Users ---
	adminUser, _, err := authService.Register(ctx, service.RegisterInput{Username: "admin", Email: adminEmail, Password: seedPassword})
	if err != nil {
		return fmt.Errorf("register admin: %w", err)
	}
	if _, err := userRepo.UpdateRole(ctx, adminUser.ID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	admin := domain.Actor{UserID: adminUser.ID, Role: domain.RoleAdmin}

	reviewers := make([]domain.Actor, 0, userCount)
	for i := 1; i <= userCount; i++ {
		u, _, err := authService.Register(ctx, service.RegisterInput{
			Username: fmt.Sprintf("reviewer%02d", i),
			Email:    fmt.Sprintf("reviewer%02d@example.com", i),
			Password: seedPassword,
		})
		if err != nil {
			return fmt.Errorf("register reviewer %d: %w", i, err)
		}
		reviewers = append(reviewers, domain.Actor{UserID: u.ID, Role: u.Role})
	}
	log.Info("users created", slog.Int("count", userCount+1))

	// --- Businesses ---
	created := make([]*domain.Business, 0, businessCount)
	for i := range businessCount {
		category := categories[i%len(categories)]
		loc := cities[rng.IntN(len(cities))]
		name := fmt.Sprintf("%s %s", namePrefixes[rng.IntN(len(namePrefixes))], pick(rng, nameSuffixes[category]))
		description := fmt.Sprintf("%s in %s serving the local community since %d.", name, loc.city, 1980+rng.IntN(44))
		address := fmt.Sprintf("%d %s", 100+rng.IntN(900), pick(rng, streets))
		phone := fmt.Sprintf("555-%03d-%04d", rng.IntN(1000), rng.IntN(10000))

		owner := reviewers[rng.IntN(len(reviewers))]
		b, err := businessService.Create(ctx, owner, service.BusinessInput{
			Name:        &name,
			Description: &description,
			Category:    &category,
			Address:     &address,
			City:        &loc.city,
			State:       &loc.state,
			ZipCode:     &loc.zip,
			Phone:       &phone,
		})
		if err != nil {
			return fmt.Errorf("create business %q: %w", name, err)
		}
		if rng.IntN(3) == 0 {
			if _, err := adminService.SetVerified(ctx, admin, b.ID, true); err != nil {
				return fmt.Errorf("verify business %s: %w", b.ID, err)
			}
		}
		created = append(created, b)
	}
	log.Info("businesses created", slog.Int("count", len(created)))

	// --- Reviews ---
	var approved, rejected, pending int
	for _, b := range created {
		for _, idx := range rng.Perm(len(reviewers))[:rng.IntN(min(len(reviewers), 8)+1)] {
			reviewer := reviewers[idx]
			if reviewer.UserID == b.OwnerID {
				continue
			}
			rating := 1 + rng.IntN(5)
			r, err := reviewService.Create(ctx, reviewer, service.CreateReviewInput{
				BusinessID: b.ID,
				Rating:     rating,
				Quality:    clamp(rating + rng.IntN(3) - 1),
				Service:    clamp(rating + rng.IntN(3) - 1),
				Value:      clamp(rating + rng.IntN(3) - 1),
				Title:      pick(rng, reviewTitles[rating]),
				Content:    pick(rng, reviewBodies),
			})
			if err != nil {
				return fmt.Errorf("create review for %s: %w", b.ID, err)
			}

			switch n := rng.IntN(10); {
			case n < 7:
				_, err = adminService.ApproveReview(ctx, admin, r.ID)
				approved++
			case n < 8:
				_, err = adminService.RejectReview(ctx, admin, r.ID, "")
				rejected++
			default:
				pending++
			}
			if err != nil {
				return fmt.Errorf("moderate review %s: %w", r.ID, err)
			}
		}
	}

	log.Info("seed completed",
		slog.Int("approved_reviews", approved),
		slog.Int("rejected_reviews", rejected),
		slog.Int("pending_reviews", pending),
		slog.String("admin_email", adminEmail),
	)
	return nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func clamp(v int) int {
	return max(domain.MinRating, min(domain.MaxRating, v))
}

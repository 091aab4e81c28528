// Command seed fills a database with deterministic pseudo-random test data.
// It drives the regular service layer so every generated row respects the
// same invariants production writes go through. Never run it against a
// production database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meetgrid/meetgrid/internal/app"
	"github.com/meetgrid/meetgrid/internal/database"
	"github.com/meetgrid/meetgrid/internal/models"
	"github.com/meetgrid/meetgrid/internal/services"
	"github.com/meetgrid/meetgrid/pkg/logger"
)

const seedPassword = "meetgrid-dev-password"

var firstNames = []string{
	"Alice", "Bruno", "Chiara", "Dmitri", "Elena", "Farid", "Greta", "Hugo",
	"Ines", "Jonas", "Katja", "Lars", "Mara", "Nils", "Olga", "Pavel",
}

var eventTitles = []string{
	"Go meetup", "Board game night", "Morning run", "Photography walk",
	"Language exchange", "Vinyl listening session", "Climbing intro",
	"Street food tour", "Open mic", "Hack evening",
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("meetgrid-seed", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var (
		configPath string
		userCount  int
		eventCount int
		seed       int64
	)
	fs.StringVar(&configPath, "config", "", "Path to configuration directory")
	fs.IntVar(&userCount, "users", 12, "Number of users to create")
	fs.IntVar(&eventCount, "events", 20, "Number of events to create")
	fs.Int64Var(&seed, "seed", 1, "Seed for the pseudo-random generator")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		cfg *app.Config
		err error
	)
	if configPath == "" {
		cfg, err = app.LoadConfig()
	} else {
		cfg, err = app.LoadConfig(configPath)
	}
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel, cfg.Server.Development); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	db, err := database.Open(database.Config{
		Driver:   cfg.Database.Driver,
		Path:     cfg.Database.Path,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Options:  cfg.Database.Options,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	return populate(context.Background(), db, userCount, eventCount, rand.New(rand.NewSource(seed)))
}

func populate(ctx context.Context, db *gorm.DB, userCount, eventCount int, rng *rand.Rand) error {
	log := logger.WithModule("seed")

	audit, err := services.NewAuditService(db)
	if err != nil {
		return err
	}
	friendships, err := services.NewFriendshipService(db, audit)
	if err != nil {
		return err
	}
	users, err := services.NewUserService(db, friendships, audit)
	if err != nil {
		return err
	}
	events, err := services.NewEventService(db, audit)
	if err != nil {
		return err
	}
	invitations, err := services.NewInvitationService(db, events, users, audit)
	if err != nil {
		return err
	}
	comments, err := services.NewCommentService(db, events)
	if err != nil {
		return err
	}

	accounts := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		name := firstNames[i%len(firstNames)]
		email := fmt.Sprintf("%s%02d@seed.meetgrid.dev", strings.ToLower(name), i)
		user, err := users.Signup(ctx, services.SignupInput{
			Email:    email,
			Name:     name,
			Password: seedPassword,
		})
		if err != nil {
			return fmt.Errorf("seed user %s: %w", email, err)
		}
		accounts = append(accounts, user)
	}
	log.Info("seeded users", zap.Int("count", len(accounts)))

	// Sprinkle friendships; roughly two requests per user, most accepted.
	for i := 0; i < userCount*2; i++ {
		sender := accounts[rng.Intn(len(accounts))]
		receiver := accounts[rng.Intn(len(accounts))]
		if sender.ID == receiver.ID {
			continue
		}
		friendship, err := friendships.Create(ctx, sender.ID, receiver.Email)
		if err != nil {
			continue // duplicates and existing pairs are expected
		}
		action := services.ActionAccept
		if rng.Intn(4) == 0 {
			action = services.ActionReject
		}
		if _, err := friendships.Respond(ctx, friendship.ID, receiver.ID, action); err != nil {
			return fmt.Errorf("respond friendship: %w", err)
		}
	}

	var categories []models.Category
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	created := 0
	for i := 0; i < eventCount; i++ {
		organizer := accounts[rng.Intn(len(accounts))]
		input := services.CreateEventInput{
			Title:       eventTitles[rng.Intn(len(eventTitles))],
			Description: "Seeded test event",
			Date:        time.Now().Add(time.Duration(rng.Intn(45*24)) * time.Hour),
		}
		if len(categories) > 0 {
			input.CategoryIDs = []string{categories[rng.Intn(len(categories))].ID}
		}
		if rng.Intn(3) == 0 {
			limit := 3 + rng.Intn(20)
			input.MaxParticipants = &limit
		}

		event, err := events.Create(ctx, organizer.ID, input)
		if err != nil {
			return fmt.Errorf("seed event: %w", err)
		}
		created++

		// Mix of direct registrations and invitations.
		for j := 0; j < rng.Intn(6); j++ {
			guest := accounts[rng.Intn(len(accounts))]
			if guest.ID == organizer.ID {
				continue
			}
			if rng.Intn(2) == 0 {
				_, _ = events.Register(ctx, event.ID, guest.ID)
				continue
			}
			invitation, err := invitations.Create(ctx, event.ID, organizer.ID, guest.Email)
			if err != nil {
				continue // privacy gates and duplicates are expected
			}
			action := services.ActionAccept
			if rng.Intn(3) == 0 {
				action = services.ActionReject
			}
			_, _ = invitations.Respond(ctx, invitation.ID, guest.ID, action)
		}

		for j := 0; j < rng.Intn(3); j++ {
			author := accounts[rng.Intn(len(accounts))]
			if _, err := comments.Create(ctx, event.ID, author.ID, services.CreateCommentInput{
				Content: "Looking forward to this one!",
			}); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	log.Info("seeded events", zap.Int("count", created))
	return nil
}

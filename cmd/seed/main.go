package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"climabook/internal/config"
	"climabook/internal/service/bookings"
	"climabook/internal/store/postgres"
)

// Fills the upcoming weeks with fake pending bookings by driving the
// real submission workflow, so seeded data obeys the same slot and
// per-date capacity rules as live traffic.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "climabook-seed"),
	)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 4})
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		_ = postgres.Close(db)
	}()

	repo := postgres.NewBookingRepo(db)
	svc := bookings.NewService(repo, nil, bookings.Config{
		SlotCatalog:        cfg.SlotCatalog,
		MaxBookingsPerDate: cfg.MaxBookingsPerDate,
	})

	serviceTypes := []string{
		"installation",
		"maintenance",
		"cleaning",
		"repair",
		"inspection",
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created := 0
	today := time.Now()
	for day := 1; day <= 21; day++ {
		date := today.AddDate(0, 0, day)
		for _, slot := range cfg.SlotCatalog {
			if gofakeit.Bool() {
				continue
			}
			_, err := svc.Submit(ctx, bookings.SubmitInput{
				Name:        gofakeit.Name(),
				Email:       gofakeit.Email(),
				Phone:       gofakeit.Phone(),
				Address:     gofakeit.Address().Address,
				ServiceDate: date,
				SlotTime:    slot,
				ServiceType: serviceTypes[gofakeit.Number(0, len(serviceTypes)-1)],
				Description: gofakeit.Sentence(12),
			})
			if err != nil {
				if errors.Is(err, bookings.ErrSlotUnavailable) || errors.Is(err, bookings.ErrDateFullyBooked) {
					continue
				}
				log.Error("seed submit failed", slog.Any("err", err))
				os.Exit(1)
			}
			created++
		}
	}

	log.Info("seed complete", slog.Int("bookings", created))
}

// Package main seeds a demo venue with calendar settings and a day of
// operational data, and prints a development token that can read it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"venueledger/internal/config"
	appctx "venueledger/internal/core/context"
	"venueledger/internal/core/id"
	"venueledger/internal/domain/auth"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/infrastructure/http/v1/middleware"
	"venueledger/internal/infrastructure/storage/postgres"
	"venueledger/pkg/logger"
)

func main() {
	dateFlag := flag.String("date", "", "business date to seed (YYYY-MM-DD, default yesterday)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	date := calendar.DateOf(time.Now().UTC()).AddDays(-1)
	if *dateFlag != "" {
		if date, err = calendar.ParseDate(*dateFlag); err != nil {
			log.Fatalw("invalid -date", "error", err)
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	companyID := id.New()
	if err := seedVenue(ctx, pool, companyID, date); err != nil {
		log.Fatalw("failed to seed venue", "error", err)
	}
	log.Infow("demo venue seeded", "company_id", companyID, "date", date.String())

	if cfg.JWTSecret == "" {
		log.Info("JWT_SECRET not set, skipping token")
		return
	}
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret, cfg.JWTIssuer))
	token, expiresAt, err := jwtService.GenerateAccessToken(appctx.UserContext{
		UserID:     "demo-manager",
		Email:      "manager@demo.venue",
		CompanyIDs: []string{companyID.String()},
		Permissions: []string{
			middleware.PermissionReportRead,
			middleware.PermissionReportGenerate,
			middleware.PermissionExpensePost,
		},
	})
	if err != nil {
		log.Fatalw("failed to sign token", "error", err)
	}
	log.Infow("development token", "token", token, "expires_at", expiresAt)
}

// seedVenue writes a venue open 09:00-23:00 every day plus one business day
// of activity: a paid sale, a session-linked sale, a session ending after
// closing, a stock purchase, maintenance and a manual expense.
func seedVenue(ctx context.Context, pool *postgres.Pool, companyID id.ID, date calendar.Date) error {
	hours, err := calendar.NewConfig(calendar.ModeGeneral, calendar.Hours{
		Start:         calendar.MustClock("09:00"),
		End:           calendar.MustClock("23:00"),
		Timezone:      "UTC",
		OperatingDays: calendar.EveryDay,
	}, nil)
	if err != nil {
		return err
	}
	settings := calendar.FromConfig(hours)

	at := func(h, m int) time.Time { return date.At(h, m, 0, 0, time.UTC) }
	sessionID := id.New()
	itemID := id.New()

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO venue_settings (
			company_id, business_hours_start, business_hours_end, timezone,
			operating_days, individual_day_hours, use_individual_hours
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		companyID, settings.BusinessHoursStart, settings.BusinessHoursEnd, settings.Timezone,
		settings.OperatingDays, settings.IndividualDayHours, settings.UseIndividualHours,
	)
	batch.Queue(`
		INSERT INTO table_sessions (id, company_id, total_cost, started_at, ended_at, status)
		VALUES ($1, $2, 30.00, $3, $4, 'COMPLETED')`,
		sessionID, companyID, at(21, 0), at(23, 10),
	)
	batch.Queue(`
		INSERT INTO pos_sales (id, company_id, amount, created_at, table_session_id, payment_status)
		VALUES ($1, $2, 40.00, $3, NULL, 'PAID'), ($4, $2, 12.00, $5, $6, 'PAID')`,
		id.New(), companyID, at(21, 0), id.New(), at(22, 0), sessionID,
	)
	batch.Queue(`
		INSERT INTO inventory_items (id, company_id, name, classification)
		VALUES ($1, $2, 'Cue chalk', 'INTERNAL_USE')`,
		itemID, companyID,
	)
	batch.Queue(`
		INSERT INTO stock_movements (id, company_id, item_id, quantity, cost_price, type, created_at)
		VALUES ($1, $2, $3, 10, 1.25, 'PURCHASE', $4)`,
		id.New(), companyID, itemID, at(10, 0),
	)
	batch.Queue(`
		INSERT INTO venue_maintenance (id, company_id, cost, maintenance_at)
		VALUES ($1, $2, 15.00, $3)`,
		id.New(), companyID, at(11, 0),
	)
	batch.Queue(`
		INSERT INTO expenses (id, company_id, amount, category, expense_date)
		VALUES ($1, $2, 50.00, 'STAFF', $3)`,
		id.New(), companyID, at(12, 0),
	)

	return pool.SendBatch(ctx, batch).Close()
}

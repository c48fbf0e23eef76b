package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
	"venueledger/internal/domain/finance"
	"venueledger/internal/infrastructure/storage/postgres"
)

const settingsTable = "venue_settings"

type settingsRow struct {
	BusinessHoursStart string `db:"business_hours_start"`
	BusinessHoursEnd   string `db:"business_hours_end"`
	Timezone           string `db:"timezone"`
	OperatingDays      string `db:"operating_days"`
	IndividualDayHours string `db:"individual_day_hours"`
	UseIndividualHours bool   `db:"use_individual_hours"`
}

// SettingsRepo implements finance.SettingsRepository.
type SettingsRepo struct {
	builder   squirrel.StatementBuilderType
	txManager *postgres.TxManager
}

var _ finance.SettingsRepository = (*SettingsRepo)(nil)

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txManager *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		txManager: txManager,
	}
}

// GetCalendarSettings loads the serialized calendar settings of a company.
func (r *SettingsRepo) GetCalendarSettings(ctx context.Context, companyID id.ID) (*calendar.Settings, error) {
	sql, args, err := r.settingsQuery(companyID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row settingsRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, calendar.ErrConfigurationMissing
		}
		return nil, fmt.Errorf("get calendar settings: %w", err)
	}

	return &calendar.Settings{
		BusinessHoursStart: row.BusinessHoursStart,
		BusinessHoursEnd:   row.BusinessHoursEnd,
		Timezone:           row.Timezone,
		OperatingDays:      row.OperatingDays,
		IndividualDayHours: row.IndividualDayHours,
		UseIndividualHours: row.UseIndividualHours,
	}, nil
}

// ListConfiguredCompanies returns every company with a settings row.
func (r *SettingsRepo) ListConfiguredCompanies(ctx context.Context) ([]id.ID, error) {
	sql, args, err := r.builder.
		Select("company_id").
		From(settingsTable).
		OrderBy("company_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list configured companies: %w", err)
	}
	return ids, nil
}

func (r *SettingsRepo) settingsQuery(companyID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"COALESCE(business_hours_start, '') AS business_hours_start",
			"COALESCE(business_hours_end, '') AS business_hours_end",
			"COALESCE(timezone, '') AS timezone",
			"COALESCE(operating_days, '') AS operating_days",
			"COALESCE(individual_day_hours, '') AS individual_day_hours",
			"COALESCE(use_individual_hours, false) AS use_individual_hours",
		).
		From(settingsTable).
		Where(squirrel.Eq{"company_id": companyID})
}

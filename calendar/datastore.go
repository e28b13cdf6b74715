package calendar

import (
	"context"
	"time"

	"github.com/canteen-pay/meal-go/datastore"
)

// Datastore abstracts the calendar tables
type Datastore interface {
	datastore.Datastore
	// IsCompanyHoliday returns true when the day is in company_holidays
	IsCompanyHoliday(ctx context.Context, day time.Time) (bool, error)
	// HasAbsence returns true when an inclusive absence range covers the day
	HasAbsence(ctx context.Context, employeeID int64, day time.Time) (bool, error)
}

// Postgres is a Datastore wrapper around a postgres database
type Postgres struct {
	datastore.Postgres
}

// NewPostgres creates a new Postgres Datastore
func NewPostgres(databaseURL string, performMigration bool) (Datastore, error) {
	pg, err := datastore.NewPostgres(databaseURL, performMigration)
	if pg != nil {
		return &Postgres{*pg}, err
	}
	return nil, err
}

// IsCompanyHoliday returns true when the day is in company_holidays
func (pg *Postgres) IsCompanyHoliday(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := pg.RawDB().GetContext(ctx, &exists,
		`select exists(select 1 from company_holidays where day = $1)`,
		day.Format("2006-01-02"))
	return exists, err
}

// HasAbsence returns true when an inclusive absence range covers the day
func (pg *Postgres) HasAbsence(ctx context.Context, employeeID int64, day time.Time) (bool, error) {
	var exists bool
	err := pg.RawDB().GetContext(ctx, &exists,
		`select exists(
			select 1 from employee_absences
			where employee_id = $1 and date_from <= $2 and date_to >= $2
		)`,
		employeeID, day.Format("2006-01-02"))
	return exists, err
}

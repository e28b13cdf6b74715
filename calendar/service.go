// Package calendar answers working-day questions: company workdays and
// per-employee absences. Reads only, results are cached briefly.
package calendar

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Oracle - the read-only calendar questions the payment pipeline asks
type Oracle interface {
	IsCompanyWorkday(ctx context.Context, day time.Time) (bool, error)
	IsEmployeeWorking(ctx context.Context, employeeID int64, day time.Time) (bool, error)
}

// Service implements Oracle over the datastore with a small lookup cache
type Service struct {
	Datastore Datastore
	cache     *cache.Cache
}

// InitService creates a calendar service
func InitService(datastore Datastore) *Service {
	return &Service{
		Datastore: datastore,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
	}
}

// IsCompanyWorkday - weekday Mon..Fri and not a company holiday
func (s *Service) IsCompanyWorkday(ctx context.Context, day time.Time) (bool, error) {
	wd := day.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}

	key := "holiday:" + day.Format("2006-01-02")
	if v, found := s.cache.Get(key); found {
		return !v.(bool), nil
	}

	holiday, err := s.Datastore.IsCompanyHoliday(ctx, day)
	if err != nil {
		return false, fmt.Errorf("failed to look up company holiday: %w", err)
	}
	s.cache.SetDefault(key, holiday)

	return !holiday, nil
}

// IsEmployeeWorking - no absence range covers the day
func (s *Service) IsEmployeeWorking(ctx context.Context, employeeID int64, day time.Time) (bool, error) {
	key := fmt.Sprintf("absence:%d:%s", employeeID, day.Format("2006-01-02"))
	if v, found := s.cache.Get(key); found {
		return !v.(bool), nil
	}

	absent, err := s.Datastore.HasAbsence(ctx, employeeID, day)
	if err != nil {
		return false, fmt.Errorf("failed to look up employee absence: %w", err)
	}
	s.cache.SetDefault(key, absent)

	return !absent, nil
}

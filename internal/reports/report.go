package reports

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tempora-hr/tempora/internal/accounting"
	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/timeclock"
)

// DayRow is one line of the monthly report: first and last punch of
// the local day plus the accounted minutes.
type DayRow struct {
	Date            time.Time
	FirstIn         *time.Time
	LastOut         *time.Time
	WorkedMinutes   int
	ExpectedMinutes int
	Unpaired        int
}

// MonthlyReport is a user's fully assembled month.
type MonthlyReport struct {
	UserName  string
	UserEmail string
	Month     time.Time
	Days      []DayRow
	Totals    accounting.MonthTotals
}

// ProfileSource resolves the report subject.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (directory.Profile, error)
}

// OverviewSource supplies the accounted month.
type OverviewSource interface {
	MonthOverview(ctx context.Context, userID uuid.UUID, month time.Time) (accounting.MonthOverview, error)
}

// PunchSource supplies the raw punches used for first-in/last-out.
type PunchSource interface {
	MonthPunches(ctx context.Context, userID uuid.UUID, month time.Time) ([]timeclock.Punch, error)
}

// Service assembles monthly reports.
type Service struct {
	profiles ProfileSource
	overview OverviewSource
	punches  PunchSource
	loc      *time.Location
}

// NewService builds a report service bound to one timezone.
func NewService(profiles ProfileSource, overview OverviewSource, punches PunchSource, loc *time.Location) *Service {
	return &Service{profiles: profiles, overview: overview, punches: punches, loc: loc}
}

// Monthly assembles the report for a user and month. The overview and
// the raw punch list are fetched concurrently.
func (s *Service) Monthly(ctx context.Context, userID uuid.UUID, month time.Time) (MonthlyReport, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return MonthlyReport{}, err
	}

	var (
		overview accounting.MonthOverview
		punches  []timeclock.Punch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview, err = s.overview.MonthOverview(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		punches, err = s.punches.MonthPunches(gctx, userID, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return MonthlyReport{}, err
	}

	return MonthlyReport{
		UserName:  profile.Name,
		UserEmail: profile.Email,
		Month:     month,
		Days:      s.buildRows(overview.Days, punches),
		Totals:    overview.Totals,
	}, nil
}

// buildRows decorates each accounted day with the first "in" and last
// "out" punch of that local day.
func (s *Service) buildRows(days []accounting.DailySummary, punches []timeclock.Punch) []DayRow {
	type edges struct {
		firstIn *time.Time
		lastOut *time.Time
	}
	byDay := make(map[time.Time]edges, len(days))
	for _, p := range punches {
		local := p.Instant.In(s.loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
		e := byDay[day]
		switch p.Kind {
		case timeclock.KindIn:
			if e.firstIn == nil || local.Before(*e.firstIn) {
				t := local
				e.firstIn = &t
			}
		case timeclock.KindOut:
			if e.lastOut == nil || local.After(*e.lastOut) {
				t := local
				e.lastOut = &t
			}
		}
		byDay[day] = e
	}

	rows := make([]DayRow, 0, len(days))
	for _, d := range days {
		e := byDay[d.Date]
		rows = append(rows, DayRow{
			Date:            d.Date,
			FirstIn:         e.firstIn,
			LastOut:         e.lastOut,
			WorkedMinutes:   d.WorkedMinutes,
			ExpectedMinutes: d.ExpectedMinutes,
			Unpaired:        d.Unpaired,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

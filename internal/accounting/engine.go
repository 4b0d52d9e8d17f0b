package accounting

import (
	"sort"
	"time"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

// DayPairing is the result of pairing one day's punches.
type DayPairing struct {
	Intervals []WorkInterval
	Unpaired  int
}

// PairDay pairs one day's punches by chronological index: the i-th
// "in" with the i-th "out". Punches beyond min(ins, outs) on the
// longer side are left unpaired and contribute nothing. A pair whose
// out precedes its in is discarded rather than producing a negative
// duration, keeping downstream sums monotonic. No error is ever
// raised; sparse or malformed days degrade to zero.
func PairDay(punches []timeclock.Punch) DayPairing {
	var ins, outs []time.Time
	for _, p := range punches {
		switch p.Kind {
		case timeclock.KindIn:
			ins = append(ins, p.Instant)
		case timeclock.KindOut:
			outs = append(outs, p.Instant)
		}
	}

	n := len(ins)
	if len(outs) < n {
		n = len(outs)
	}

	pairing := DayPairing{Unpaired: len(ins) + len(outs) - 2*n}
	for i := 0; i < n; i++ {
		if outs[i].Before(ins[i]) {
			pairing.Unpaired += 2
			continue
		}
		pairing.Intervals = append(pairing.Intervals, WorkInterval{In: ins[i], Out: outs[i]})
	}
	return pairing
}

// BuildDailySummaries groups punches by local calendar day and converts
// each day's paired intervals into a worked-minutes total. Only days
// with at least one punch produce a summary; silent absence is not
// flagged. The result is ordered by date ascending.
func BuildDailySummaries(punches []timeclock.Punch, expectedMinutes int, loc *time.Location) []DailySummary {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[time.Time][]timeclock.Punch)
	for _, p := range punches {
		local := p.Instant.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		byDay[day] = append(byDay[day], p)
	}

	summaries := make([]DailySummary, 0, len(byDay))
	for day, group := range byDay {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Instant.Before(group[j].Instant)
		})
		pairing := PairDay(group)
		worked := 0
		for _, iv := range pairing.Intervals {
			worked += iv.Minutes()
		}
		summaries = append(summaries, DailySummary{
			Date:            day,
			WorkedMinutes:   worked,
			ExpectedMinutes: expectedMinutes,
			Unpaired:        pairing.Unpaired,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})
	return summaries
}

// AggregateMonth rolls daily summaries into signed month totals. The
// expected baseline accrues only over days that produced a summary,
// i.e. days with at least one punch.
func AggregateMonth(days []DailySummary) MonthTotals {
	var totals MonthTotals
	for _, day := range days {
		totals.WorkedMinutes += day.WorkedMinutes
		totals.ExpectedMinutes += day.ExpectedMinutes
	}
	totals.BalanceMinutes = totals.WorkedMinutes - totals.ExpectedMinutes
	if totals.BalanceMinutes >= 0 {
		totals.OvertimeMinutes = totals.BalanceMinutes
	} else {
		totals.DeficitMinutes = -totals.BalanceMinutes
	}
	return totals
}

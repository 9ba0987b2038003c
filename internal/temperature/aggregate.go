package temperature

import (
	"fmt"

	"github.com/i474232898/temperature-dashboard/internal/i18n"
)

// AggregateMonthly reduces records to one point per calendar month: the
// highest MaxTemp and the lowest MinTemp seen in that month. All twelve
// months are present; a month without records yields nil for both values.
// Labels are the month names in lang.
func AggregateMonthly(records []Record, lang i18n.Language) Series {
	var (
		maxByMonth [12]*float64
		minByMonth [12]*float64
	)

	for _, r := range records {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		i := r.Month - 1
		if maxByMonth[i] == nil || r.MaxTemp > *maxByMonth[i] {
			maxByMonth[i] = float64Ptr(r.MaxTemp)
		}
		if minByMonth[i] == nil || r.MinTemp < *minByMonth[i] {
			minByMonth[i] = float64Ptr(r.MinTemp)
		}
	}

	return Series{
		Labels:    i18n.MonthNames(lang),
		MaxValues: maxByMonth[:],
		MinValues: minByMonth[:],
	}
}

// AggregateDaily returns one point per record of the given month, in input
// order, labelled "month/day". Records sharing a day are not merged. The
// result is empty, not nil, when the month has no records.
func AggregateDaily(records []Record, month int) Series {
	s := Series{
		Labels:    []string{},
		MaxValues: []*float64{},
		MinValues: []*float64{},
	}

	for _, r := range records {
		if r.Month != month {
			continue
		}
		s.Labels = append(s.Labels, fmt.Sprintf("%d/%d", r.Month, r.Day))
		s.MaxValues = append(s.MaxValues, float64Ptr(r.MaxTemp))
		s.MinValues = append(s.MinValues, float64Ptr(r.MinTemp))
	}

	return s
}

// Aggregate dispatches on granularity. month is ignored for Monthly.
func Aggregate(records []Record, g Granularity, month int, lang i18n.Language) Series {
	if g == Daily {
		return AggregateDaily(records, month)
	}
	return AggregateMonthly(records, lang)
}

func float64Ptr(v float64) *float64 {
	return &v
}

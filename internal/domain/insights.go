package domain

import "time"

// Date is a calendar date in the API's {year, month, day} shape.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	StartDate Date `json:"startDate"`
	EndDate   Date `json:"endDate"`
}

// MetricRequest selects a metric for a performance report. "ALL" requests
// every available metric.
type MetricRequest struct {
	Metric string `json:"metric"`
}

// MetricAll selects every metric.
const MetricAll = "ALL"

// Insights is the result of a performance fetch. When the fetch fails Report
// is nil and Error describes the failure.
type Insights struct {
	Report Record `json:"report,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the fetch failed.
func (i *Insights) Failed() bool {
	return i.Error != ""
}

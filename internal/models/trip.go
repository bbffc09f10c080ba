package models

import "time"

// TripStat is one precomputed travel-level bucket for an origin-destination
// borough pair
type TripStat struct {
	PickupBorough  string    `json:"pu_borough"`
	DropoffBorough string    `json:"do_borough"`
	Time           time.Time `json:"time"` // Time of day on stats.ReferenceDate

	TLI         float64 `json:"tli"`
	AvgDuration float64 `json:"avg_duration"` // Minutes
	VarDuration float64 `json:"var_duration"`
	AvgDistance float64 `json:"avg_distance"` // Miles
	AvgCost     float64 `json:"avg_cost"`     // USD
}

// TripStatRow is a trip statistics row as read from a tabular source, before
// its time fields are normalized
type TripStatRow struct {
	PickupBorough  string
	DropoffBorough string
	Hour           string // 1-12
	MinBlock       string // 0, 15, 30, 45
	AMPM           string

	TLI         float64
	AvgDuration float64
	VarDuration float64
	AvgDistance float64
	AvgCost     float64
}

// RouteSummary describes one borough pair available in the dataset
type RouteSummary struct {
	PickupBorough  string `json:"pu_borough"`
	DropoffBorough string `json:"do_borough"`
	Records        int    `json:"records"`
}

// At returns the bucket time, for use as a series key
func (t TripStat) At() time.Time { return t.Time }

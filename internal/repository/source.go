package repository

import (
	"context"
	"regexp"
	"strings"

	"github.com/taxiluck/tli-backend-go/internal/models"
)

// Source is a tabular backing store for the two datasets
type Source interface {
	TripStats(ctx context.Context) ([]models.TripStatRow, error)
	Congestion(ctx context.Context) ([]models.CongestionRow, error)
	Name() string
}

// Trip statistics columns, after NormalizeColumn
const (
	ColPickupBorough  = "pu_borough"
	ColDropoffBorough = "do_borough"
	ColPickupHour     = "pickup_hour"
	ColPickupMinBlock = "pickup_min_block"
	ColPickupAMPM     = "pickup_ampm"
	ColTLI            = "tli"
	ColAvgDuration    = "avg_duration"
	ColVarDuration    = "var_duration"
	ColAvgDistance    = "avg_distance"
	ColAvgCost        = "avg_cost"
)

// Congestion index columns, after NormalizeColumn
const (
	ColBorough  = "borough"
	ColHour     = "hour"
	ColMinBlock = "min_block"
	ColAMPM     = "ampm"
	ColCI       = "ci"
)

var nonColumnChars = regexp.MustCompile(`[^a-z0-9_]`)

// NormalizeColumn lowercases a header name and strips everything outside
// [a-z0-9_], e.g. " Pickup_Hour" becomes "pickup_hour".
func NormalizeColumn(name string) string {
	return nonColumnChars.ReplaceAllString(strings.ToLower(name), "")
}

// header maps normalized column names to their position
type header map[string]int

func newHeader(names []string) header {
	h := make(header, len(names))
	for i, name := range names {
		key := NormalizeColumn(name)
		if _, dup := h[key]; !dup {
			h[key] = i
		}
	}
	return h
}

// find returns the position of the first alias present, or -1
func (h header) find(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := h[a]; ok {
			return i
		}
	}
	return -1
}

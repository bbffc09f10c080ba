package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/taxiluck/tli-backend-go/internal/models"
	"github.com/taxiluck/tli-backend-go/internal/stats"
)

// ErrNoTripData is returned by Load when the trip statistics series is
// missing or ends up empty.
var ErrNoTripData = errors.New("trip statistics dataset unavailable")

type routeKey struct {
	pickup, dropoff string
}

// Dataset is the read-only, in-memory view of both series. It is built once
// at startup and safe for concurrent use since nothing mutates it afterwards.
type Dataset struct {
	trips      map[routeKey][]models.TripStat
	congestion map[string][]models.Congestion
	routes     []models.RouteSummary

	tripCount       int
	congestionCount int
}

// Load reads both series from src. A trip statistics failure still returns a
// usable (empty) Dataset together with an error wrapping ErrNoTripData; a
// congestion failure is only logged.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Dataset, error) {
	tripRows, tripErr := src.TripStats(ctx)
	if tripErr != nil {
		logger.Error("failed to load trip statistics", "source", src.Name(), "error", tripErr)
	}

	ciRows, ciErr := src.Congestion(ctx)
	if ciErr != nil {
		logger.Warn("congestion index unavailable, ci_score falls back to 0", "source", src.Name(), "error", ciErr)
	}

	ds := NewDataset(tripRows, ciRows, logger)
	logger.Info("dataset loaded",
		"source", src.Name(),
		"trip_records", ds.tripCount,
		"routes", len(ds.routes),
		"congestion_records", ds.congestionCount,
	)

	switch {
	case tripErr != nil:
		return ds, fmt.Errorf("%w: %v", ErrNoTripData, tripErr)
	case !ds.Available():
		return ds, fmt.Errorf("%w: no valid rows", ErrNoTripData)
	}
	return ds, nil
}

// NewDataset normalizes, sorts and groups raw rows. Rows whose time fields
// do not normalize are dropped with a warning.
func NewDataset(tripRows []models.TripStatRow, ciRows []models.CongestionRow, logger *slog.Logger) *Dataset {
	trips := make([]models.TripStat, 0, len(tripRows))
	for i, r := range tripRows {
		at, err := stats.Normalize(r.Hour, r.MinBlock, r.AMPM)
		if err != nil {
			logger.Warn("dropping trip stats row", "row", i, "pu_borough", r.PickupBorough, "do_borough", r.DropoffBorough, "error", err)
			continue
		}
		trips = append(trips, models.TripStat{
			PickupBorough:  r.PickupBorough,
			DropoffBorough: r.DropoffBorough,
			Time:           at,
			TLI:            r.TLI,
			AvgDuration:    r.AvgDuration,
			VarDuration:    r.VarDuration,
			AvgDistance:    r.AvgDistance,
			AvgCost:        r.AvgCost,
		})
	}

	congestion := make([]models.Congestion, 0, len(ciRows))
	for i, r := range ciRows {
		at, err := stats.Normalize(r.Hour, r.MinBlock, r.AMPM)
		if err != nil {
			logger.Warn("dropping congestion row", "row", i, "borough", r.Borough, "error", err)
			continue
		}
		congestion = append(congestion, models.Congestion{Borough: r.Borough, Time: at, CI: r.CI})
	}

	sort.SliceStable(trips, func(i, j int) bool { return trips[i].Time.Before(trips[j].Time) })
	sort.SliceStable(congestion, func(i, j int) bool { return congestion[i].Time.Before(congestion[j].Time) })

	ds := &Dataset{
		trips:           make(map[routeKey][]models.TripStat),
		congestion:      make(map[string][]models.Congestion),
		tripCount:       len(trips),
		congestionCount: len(congestion),
	}

	// Appending in sorted order keeps every group sorted.
	for _, t := range trips {
		key := routeKey{t.PickupBorough, t.DropoffBorough}
		ds.trips[key] = append(ds.trips[key], t)
	}
	for _, c := range congestion {
		ds.congestion[c.Borough] = append(ds.congestion[c.Borough], c)
	}

	for key, series := range ds.trips {
		ds.routes = append(ds.routes, models.RouteSummary{
			PickupBorough:  key.pickup,
			DropoffBorough: key.dropoff,
			Records:        len(series),
		})
	}
	sort.Slice(ds.routes, func(i, j int) bool {
		if ds.routes[i].PickupBorough != ds.routes[j].PickupBorough {
			return ds.routes[i].PickupBorough < ds.routes[j].PickupBorough
		}
		return ds.routes[i].DropoffBorough < ds.routes[j].DropoffBorough
	})

	return ds
}

// Available reports whether any trip statistics were loaded
func (d *Dataset) Available() bool {
	return d != nil && d.tripCount > 0
}

// TripSeries returns the time-sorted records for a borough pair. The slice
// is shared and must not be modified.
func (d *Dataset) TripSeries(pickup, dropoff string) []models.TripStat {
	if d == nil {
		return nil
	}
	return d.trips[routeKey{pickup, dropoff}]
}

// CongestionSeries returns the time-sorted congestion records for a borough.
// The slice is shared and must not be modified.
func (d *Dataset) CongestionSeries(borough string) []models.Congestion {
	if d == nil {
		return nil
	}
	return d.congestion[borough]
}

// Routes lists every borough pair with its record count
func (d *Dataset) Routes() []models.RouteSummary {
	if d == nil {
		return nil
	}
	return d.routes
}

// TripCount returns the number of trip statistics records kept
func (d *Dataset) TripCount() int {
	if d == nil {
		return 0
	}
	return d.tripCount
}

// CongestionCount returns the number of congestion records kept
func (d *Dataset) CongestionCount() int {
	if d == nil {
		return 0
	}
	return d.congestionCount
}

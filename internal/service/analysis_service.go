package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"github.com/taxiluck/tli-backend-go/internal/models"
	"github.com/taxiluck/tli-backend-go/internal/repository"
	"github.com/taxiluck/tli-backend-go/internal/stats"
)

// AnalysisService answers nearest-time TLI queries against a loaded dataset
type AnalysisService struct {
	data   *repository.Dataset
	cache  gcache.Cache // nil disables caching
	logger *slog.Logger
}

// NewAnalysisService creates a new analysis service. cache may be nil.
func NewAnalysisService(data *repository.Dataset, cache gcache.Cache, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		data:   data,
		cache:  cache,
		logger: logger,
	}
}

// NewResultCache builds the LRU cache used for analysis results. A size of
// zero disables caching and returns nil.
func NewResultCache(size int, ttl time.Duration) gcache.Cache {
	if size <= 0 {
		return nil
	}
	builder := gcache.New(size).LRU()
	if ttl > 0 {
		builder = builder.Expiration(ttl)
	}
	return builder.Build()
}

// Analyze finds the bucket closest to q.Time for the requested borough pair,
// its neighbors on either side and the combined congestion score.
func (s *AnalysisService) Analyze(q models.AnalyzeQuery) (*models.AnalysisResponse, error) {
	var missing []string
	if q.PickupBorough == "" {
		missing = append(missing, "pu_borough")
	}
	if q.DropoffBorough == "" {
		missing = append(missing, "do_borough")
	}
	if q.Time == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required parameters: %s", ErrValidation, strings.Join(missing, ", "))
	}

	at, err := stats.ParseClock(q.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, q.Time)
	}

	if !s.data.Available() {
		return nil, fmt.Errorf("%w: trip statistics were not loaded", ErrDataUnavailable)
	}

	key := cacheKey(q.PickupBorough, q.DropoffBorough, at)
	if s.cache != nil {
		if cached, err := s.cache.Get(key); err == nil {
			return cached.(*models.AnalysisResponse), nil
		}
	}

	series := s.data.TripSeries(q.PickupBorough, q.DropoffBorough)
	idx, err := stats.Nearest(series, models.TripStat.At, at)
	if err != nil {
		return nil, fmt.Errorf("%w: no data for route '%s' -> '%s'", ErrNotFound, q.PickupBorough, q.DropoffBorough)
	}

	match := series[idx]
	past, future := stats.Neighbors(series, models.TripStat.At, idx)

	result := &models.AnalysisResponse{
		Status: models.StatusSuccess,
		CurrentMatch: models.CurrentMatch{
			TimeSlot: toTimeSlot(match),
			CIScore:  s.CongestionScore(q.PickupBorough, q.DropoffBorough, at),
			IsExact:  match.Time.Equal(at),
		},
		NearestPast:   toTimeSlots(past),
		NearestFuture: toTimeSlots(future),
	}

	if s.cache != nil {
		if err := s.cache.Set(key, result); err != nil {
			s.logger.Warn("failed to cache analysis result", "key", key, "error", err)
		}
	}

	return result, nil
}

// CongestionScore averages the congestion index nearest to at for the
// pickup and dropoff boroughs. A borough without congestion data counts as
// 0 in the average.
func (s *AnalysisService) CongestionScore(pickup, dropoff string, at time.Time) float64 {
	return stats.Mean(s.boroughCI(pickup, at), s.boroughCI(dropoff, at))
}

func (s *AnalysisService) boroughCI(borough string, at time.Time) float64 {
	series := s.data.CongestionSeries(borough)
	idx, err := stats.Nearest(series, models.Congestion.At, at)
	if err != nil {
		return 0
	}
	return series[idx].CI
}

// Routes lists the borough pairs that have trip statistics
func (s *AnalysisService) Routes() ([]models.RouteSummary, error) {
	if !s.data.Available() {
		return nil, fmt.Errorf("%w: trip statistics were not loaded", ErrDataUnavailable)
	}
	return s.data.Routes(), nil
}

// Status reports what the dataset holds
func (s *AnalysisService) Status() models.DatasetStatus {
	return models.DatasetStatus{
		DataAvailable:     s.data.Available(),
		TripRecords:       s.data.TripCount(),
		CongestionRecords: s.data.CongestionCount(),
		Routes:            len(s.data.Routes()),
	}
}

func toTimeSlot(r models.TripStat) models.TimeSlot {
	return models.TimeSlot{
		TLI:         r.TLI,
		AvgDuration: r.AvgDuration,
		StdDuration: stats.StdDev(r.VarDuration),
		Time:        stats.FormatClock(r.Time),
		AvgDistance: r.AvgDistance,
		AvgCost:     r.AvgCost,
	}
}

func toTimeSlots(records []models.TripStat) []models.TimeSlot {
	slots := make([]models.TimeSlot, 0, len(records))
	for _, r := range records {
		slots = append(slots, toTimeSlot(r))
	}
	return slots
}

func cacheKey(pickup, dropoff string, at time.Time) string {
	return pickup + "\x00" + dropoff + "\x00" + stats.FormatClock(at)
}

package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/taxiluck/tli-backend-go/internal/models"
	"github.com/taxiluck/tli-backend-go/internal/stats"
)

// CSVSource reads both datasets from CSV files
type CSVSource struct {
	TripStatsPath  string
	CongestionPath string
	logger         *slog.Logger
}

// NewCSVSource creates a CSV-backed source
func NewCSVSource(tripStatsPath, congestionPath string, logger *slog.Logger) *CSVSource {
	return &CSVSource{
		TripStatsPath:  tripStatsPath,
		CongestionPath: congestionPath,
		logger:         logger,
	}
}

// Name identifies the source in logs
func (s *CSVSource) Name() string {
	return "csv:" + s.TripStatsPath + "," + s.CongestionPath
}

// TripStats reads the trip statistics file
func (s *CSVSource) TripStats(ctx context.Context) ([]models.TripStatRow, error) {
	f, err := os.Open(s.TripStatsPath)
	if err != nil {
		return nil, fmt.Errorf("opening trip stats file: %w", err)
	}
	defer f.Close()

	return ReadTripStatsCSV(ctx, f, s.logger)
}

// Congestion reads the congestion index file
func (s *CSVSource) Congestion(ctx context.Context) ([]models.CongestionRow, error) {
	f, err := os.Open(s.CongestionPath)
	if err != nil {
		return nil, fmt.Errorf("opening congestion file: %w", err)
	}
	defer f.Close()

	return ReadCongestionCSV(ctx, f, s.logger)
}

// ReadTripStatsCSV parses trip statistics rows. Rows whose metrics cannot be
// parsed are skipped with a warning; time fields are kept raw.
func ReadTripStatsCSV(ctx context.Context, r io.Reader, logger *slog.Logger) ([]models.TripStatRow, error) {
	t, err := newTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading trip stats: %w", err)
	}

	cols := map[string]int{}
	for _, name := range []string{
		ColPickupBorough, ColDropoffBorough, ColPickupHour, ColPickupMinBlock, ColPickupAMPM,
		ColTLI, ColAvgDuration, ColVarDuration,
	} {
		if cols[name] = t.header.find(name); cols[name] < 0 {
			return nil, fmt.Errorf("trip stats: missing column %q", name)
		}
	}
	cols[ColAvgDistance] = t.header.find(ColAvgDistance)
	cols[ColAvgCost] = t.header.find(ColAvgCost)

	var rows []models.TripStatRow
	err = t.each(ctx, func(line int, rec record) {
		row := models.TripStatRow{
			PickupBorough:  rec.get(cols[ColPickupBorough]),
			DropoffBorough: rec.get(cols[ColDropoffBorough]),
			Hour:           rec.get(cols[ColPickupHour]),
			MinBlock:       rec.get(cols[ColPickupMinBlock]),
			AMPM:           rec.get(cols[ColPickupAMPM]),
		}

		var perr error
		row.TLI, perr = rec.float(cols[ColTLI], true, perr)
		row.AvgDuration, perr = rec.float(cols[ColAvgDuration], true, perr)
		row.VarDuration, perr = rec.float(cols[ColVarDuration], true, perr)
		row.AvgDistance, perr = rec.float(cols[ColAvgDistance], false, perr)
		row.AvgCost, perr = rec.float(cols[ColAvgCost], false, perr)
		if perr != nil {
			logger.Warn("skipping trip stats row", "line", line, "error", perr)
			return
		}
		rows = append(rows, row)
	})
	if err != nil {
		return nil, fmt.Errorf("reading trip stats: %w", err)
	}

	return rows, nil
}

// ReadCongestionCSV parses congestion index rows. Both the short column names
// (hour, min_block, ampm) and the trip-style ones (pickup_hour, ...) are
// accepted.
func ReadCongestionCSV(ctx context.Context, r io.Reader, logger *slog.Logger) ([]models.CongestionRow, error) {
	t, err := newTable(r)
	if err != nil {
		return nil, fmt.Errorf("reading congestion index: %w", err)
	}

	aliases := map[string][]string{
		ColBorough:  {ColBorough},
		ColHour:     {ColHour, ColPickupHour},
		ColMinBlock: {ColMinBlock, ColPickupMinBlock},
		ColAMPM:     {ColAMPM, ColPickupAMPM},
		ColCI:       {ColCI},
	}
	cols := map[string]int{}
	for name, names := range aliases {
		if cols[name] = t.header.find(names...); cols[name] < 0 {
			return nil, fmt.Errorf("congestion index: missing column %q", name)
		}
	}

	var rows []models.CongestionRow
	err = t.each(ctx, func(line int, rec record) {
		ci, perr := rec.float(cols[ColCI], true, nil)
		if perr != nil {
			logger.Warn("skipping congestion row", "line", line, "error", perr)
			return
		}
		rows = append(rows, models.CongestionRow{
			Borough:  rec.get(cols[ColBorough]),
			Hour:     rec.get(cols[ColHour]),
			MinBlock: rec.get(cols[ColMinBlock]),
			AMPM:     rec.get(cols[ColAMPM]),
			CI:       ci,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading congestion index: %w", err)
	}

	return rows, nil
}

type table struct {
	reader *csv.Reader
	header header
}

func newTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, err
	}

	return &table{reader: reader, header: newHeader(names)}, nil
}

// each calls fn for every data row along with the file line it starts on
func (t *table) each(ctx context.Context, fn func(line int, rec record)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := t.reader.FieldPos(0)
		fn(line, rec)
	}
}

type record []string

func (r record) get(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[i])
}

// float parses column i. Optional columns that are absent or blank read as 0.
// A previous error is passed through so calls can be chained.
func (r record) float(i int, required bool, prev error) (float64, error) {
	if prev != nil {
		return 0, prev
	}
	s := r.get(i)
	if s == "" {
		if required {
			return 0, fmt.Errorf("column %d is empty", i)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %d: %w", i, err)
	}
	if !stats.IsFinite(v) {
		return 0, fmt.Errorf("column %d: non-finite value %q", i, s)
	}
	return v, nil
}

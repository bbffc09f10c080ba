package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxiluck/tli-backend-go/internal/database"
	"github.com/taxiluck/tli-backend-go/internal/models"
	"github.com/taxiluck/tli-backend-go/internal/stats"
)

const tripCSV = `PU_Borough,DO_Borough,Pickup_Hour,Pickup_Min_Block,Pickup_AMPM,TLI,Avg_Duration,Var_Duration,Avg_Distance,Avg_Cost
Manhattan,Bronx,8,0,AM,0.9,30,9,7.1,28.5
Manhattan,Bronx,7,30,AM,0.6,24,4,7.0,27.0
Manhattan,Bronx,7,0,am,0.4,20,1,6.8,25.0
Manhattan,Bronx,seven,15,AM,0.5,22,2,6.9,26.0
Manhattan,Bronx,7,45,AM,not-a-number,26,5,7.0,27.5
Queens,Brooklyn,12,0,PM,0.7,35,16,9.0,33.0
Queens,Brooklyn,12,0,AM,0.2,18,-0.0001,9.0,31.0
`

const ciCSV = `Borough,Hour,Min_Block,AMPM,CI
Manhattan,7,0,AM,0.8
Bronx,7,15,AM,0.4
Bronx,7,30,XM,0.9
Bronx,8,0,AM,NaN
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "pickup_hour", NormalizeColumn(" Pickup_Hour"))
	assert.Equal(t, "pu_borough", NormalizeColumn("\ufeffPU_Borough"))
	assert.Equal(t, "pickuphour", NormalizeColumn("Pickup Hour"))
	assert.Equal(t, "ci", NormalizeColumn(`"CI"`))
}

func TestReadTripStatsCSV(t *testing.T) {
	rows, err := ReadTripStatsCSV(context.Background(), strings.NewReader(tripCSV), discardLogger())
	require.NoError(t, err)

	// The not-a-number TLI row is skipped, the bad hour row is kept raw.
	require.Len(t, rows, 6)
	assert.Equal(t, models.TripStatRow{
		PickupBorough: "Manhattan", DropoffBorough: "Bronx",
		Hour: "8", MinBlock: "0", AMPM: "AM",
		TLI: 0.9, AvgDuration: 30, VarDuration: 9, AvgDistance: 7.1, AvgCost: 28.5,
	}, rows[0])
	assert.Equal(t, "seven", rows[3].Hour)
}

func TestReadTripStatsCSV_OptionalColumns(t *testing.T) {
	csvText := "pu_borough,do_borough,pickup_hour,pickup_min_block,pickup_ampm,tli,avg_duration,var_duration\n" +
		"Bronx,Queens,5,15,PM,0.3,15,2\n"

	rows, err := ReadTripStatsCSV(context.Background(), strings.NewReader(csvText), discardLogger())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].AvgDistance)
	assert.Zero(t, rows[0].AvgCost)
}

func TestReadTripStatsCSV_MissingColumn(t *testing.T) {
	_, err := ReadTripStatsCSV(context.Background(), strings.NewReader("pu_borough,do_borough\nA,B\n"), discardLogger())
	assert.ErrorContains(t, err, "pickup_hour")

	_, err = ReadTripStatsCSV(context.Background(), strings.NewReader(""), discardLogger())
	assert.ErrorContains(t, err, "empty")
}

func TestReadCongestionCSV_Aliases(t *testing.T) {
	csvText := "borough,pickup_hour,pickup_min_block,pickup_ampm,ci\nQueens,9,45,PM,1.25\n"

	rows, err := ReadCongestionCSV(context.Background(), strings.NewReader(csvText), discardLogger())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.CongestionRow{Borough: "Queens", Hour: "9", MinBlock: "45", AMPM: "PM", CI: 1.25}, rows[0])
}

func TestNewDataset_SortsGroupsAndDrops(t *testing.T) {
	tripRows, err := ReadTripStatsCSV(context.Background(), strings.NewReader(tripCSV), discardLogger())
	require.NoError(t, err)
	ciRows, err := ReadCongestionCSV(context.Background(), strings.NewReader(ciCSV), discardLogger())
	require.NoError(t, err)

	ds := NewDataset(tripRows, ciRows, discardLogger())
	assert.True(t, ds.Available())
	assert.Equal(t, 5, ds.TripCount(), "row with invalid hour is dropped")
	assert.Equal(t, 2, ds.CongestionCount(), "invalid meridiem dropped, NaN skipped at read")

	series := ds.TripSeries("Manhattan", "Bronx")
	require.Len(t, series, 3)
	var got []string
	for _, r := range series {
		got = append(got, stats.FormatClock(r.Time))
	}
	assert.Equal(t, []string{"07:00:00", "07:30:00", "08:00:00"}, got)

	queens := ds.TripSeries("Queens", "Brooklyn")
	require.Len(t, queens, 2)
	assert.Equal(t, "00:00:00", stats.FormatClock(queens[0].Time))
	assert.Equal(t, "12:00:00", stats.FormatClock(queens[1].Time))

	assert.Empty(t, ds.TripSeries("Bronx", "Manhattan"), "pair lookup is directional")
	assert.Empty(t, ds.TripSeries("manhattan", "bronx"), "pair lookup is case sensitive")

	assert.Len(t, ds.CongestionSeries("Bronx"), 1)
	assert.Empty(t, ds.CongestionSeries("Staten Island"))

	assert.Equal(t, []models.RouteSummary{
		{PickupBorough: "Manhattan", DropoffBorough: "Bronx", Records: 3},
		{PickupBorough: "Queens", DropoffBorough: "Brooklyn", Records: 2},
	}, ds.Routes())
}

func TestNilDataset(t *testing.T) {
	var ds *Dataset
	assert.False(t, ds.Available())
	assert.Nil(t, ds.TripSeries("a", "b"))
	assert.Zero(t, ds.TripCount())
}

func TestLoad_CSV(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(
		writeFile(t, dir, "trips.csv", tripCSV),
		writeFile(t, dir, "ci.csv", ciCSV),
		discardLogger(),
	)

	ds, err := Load(context.Background(), src, discardLogger())
	require.NoError(t, err)
	assert.True(t, ds.Available())
	assert.Len(t, ds.TripSeries("Manhattan", "Bronx"), 3)
}

func TestLoad_MissingTripFile(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(filepath.Join(dir, "missing.csv"), writeFile(t, dir, "ci.csv", ciCSV), discardLogger())

	ds, err := Load(context.Background(), src, discardLogger())
	assert.ErrorIs(t, err, ErrNoTripData)
	require.NotNil(t, ds)
	assert.False(t, ds.Available())
	assert.Equal(t, 2, ds.CongestionCount())
}

func TestLoad_MissingCongestionFileIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	src := NewCSVSource(writeFile(t, dir, "trips.csv", tripCSV), filepath.Join(dir, "missing.csv"), discardLogger())

	ds, err := Load(context.Background(), src, discardLogger())
	require.NoError(t, err)
	assert.True(t, ds.Available())
	assert.Zero(t, ds.CongestionCount())
}

func TestLoad_OnlyInvalidRows(t *testing.T) {
	dir := t.TempDir()
	trips := "pu_borough,do_borough,pickup_hour,pickup_min_block,pickup_ampm,tli,avg_duration,var_duration\n" +
		"Bronx,Queens,x,0,AM,0.3,15,2\n"
	src := NewCSVSource(writeFile(t, dir, "trips.csv", trips), writeFile(t, dir, "ci.csv", ciCSV), discardLogger())

	_, err := Load(context.Background(), src, discardLogger())
	assert.True(t, errors.Is(err, ErrNoTripData))
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tli.db")
	db, err := database.Open(database.Config{Path: path})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, discardLogger()))

	ctx := context.Background()
	tripRows, err := ReadTripStatsCSV(ctx, strings.NewReader(tripCSV), discardLogger())
	require.NoError(t, err)
	ciRows, err := ReadCongestionCSV(ctx, strings.NewReader(ciCSV), discardLogger())
	require.NoError(t, err)

	store := NewSQLiteStore(db, path)
	require.NoError(t, store.ReplaceTripStats(ctx, tripRows))
	require.NoError(t, store.ReplaceCongestion(ctx, ciRows))
	// Replacing twice must not duplicate rows.
	require.NoError(t, store.ReplaceTripStats(ctx, tripRows))

	gotTrips, err := store.TripStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, tripRows, gotTrips)

	gotCI, err := store.Congestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ciRows, gotCI)

	ds, err := Load(ctx, store, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 5, ds.TripCount())
}

package models

// TimeSlot is a neighboring bucket reported around the current match
type TimeSlot struct {
	TLI         float64 `json:"tli"`
	AvgDuration float64 `json:"avg_duration"`
	StdDuration float64 `json:"std_duration"`
	Time        string  `json:"time"` // HH:MM:SS
	AvgDistance float64 `json:"avg_distance"`
	AvgCost     float64 `json:"avg_cost"`
}

// CurrentMatch is the bucket closest to the requested time
type CurrentMatch struct {
	TimeSlot
	CIScore float64 `json:"ci_score"`
	IsExact bool    `json:"is_exact"`
}

// AnalysisResponse is the body returned by GET /analyze
type AnalysisResponse struct {
	Status        string       `json:"status"`
	CurrentMatch  CurrentMatch `json:"current_match"`
	NearestPast   []TimeSlot   `json:"nearest_past"`
	NearestFuture []TimeSlot   `json:"nearest_future"`
}

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DatasetStatus summarizes what was loaded at startup
type DatasetStatus struct {
	DataAvailable     bool `json:"data_available"`
	TripRecords       int  `json:"trip_records"`
	CongestionRecords int  `json:"congestion_records"`
	Routes            int  `json:"routes"`
}

package models

// AnalyzeQuery represents the query parameters of GET /analyze
type AnalyzeQuery struct {
	PickupBorough  string `form:"pu_borough" binding:"required"`
	DropoffBorough string `form:"do_borough" binding:"required"`
	Time           string `form:"time" binding:"required"` // HH:MM, 24-hour
}

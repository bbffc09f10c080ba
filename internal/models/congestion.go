package models

import "time"

// Congestion is one congestion index bucket for a single borough
type Congestion struct {
	Borough string    `json:"borough"`
	Time    time.Time `json:"time"`
	CI      float64   `json:"ci"`
}

// CongestionRow is a congestion index row as read from a tabular source
type CongestionRow struct {
	Borough  string
	Hour     string
	MinBlock string
	AMPM     string
	CI       float64
}

// At returns the bucket time, for use as a series key
func (c Congestion) At() time.Time { return c.Time }

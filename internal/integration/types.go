package integration

import "github.com/google/uuid"

type Entry struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Coords []float64 `json:"coords"`
}

type InsertRequest struct {
	Name   string    `json:"name"`
	Coords []float64 `json:"coords"`
}

// Lookup selects a point by one key; leave the others zero.
type Lookup struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Name   *string    `json:"name,omitempty"`
	Coords []float64  `json:"coords,omitempty"`
}

type RegionQuery struct {
	Radius float64   `json:"radius"`
	Origin []float64 `json:"origin"`
}

type RegionRequest struct {
	Queries []RegionQuery `json:"queries"`
}

type RegionResponse struct {
	Results [][]Entry `json:"results"`
}

type RemoveResponse struct {
	Removed bool `json:"removed"`
}

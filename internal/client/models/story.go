// Package models defines the records persisted by the local store: cached
// stories, pending mutations awaiting sync, and request-cache entries.
package models

import "time"

// Story is a denormalized snapshot of a remotely owned story record.
// The id is stable and assigned by the server. HasLocation is derived from
// the coordinate pair at write time; CachedAt records local freshness.
type Story struct {
	ID          string
	Name        string
	Description string
	PhotoURL    string
	Lat         *float64
	Lon         *float64
	HasLocation bool
	CreatedAt   time.Time
	CachedAt    time.Time
}

// Normalize derives HasLocation from the coordinate pair and stamps CachedAt.
// Call before persisting a server record into the cache.
func (s *Story) Normalize(now time.Time) {
	s.HasLocation = s.Lat != nil && s.Lon != nil
	s.CachedAt = now
}

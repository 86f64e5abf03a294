package models

import "time"

// CacheEntry is an opaque request-identity → response pair scoped to a named
// cache partition.
type CacheEntry struct {
	Partition   string
	RequestKey  string
	Status      int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

package models

import "time"

// SortBy selects the ordering of a story query.
type SortBy string

const (
	SortByName   SortBy = "name"
	SortByNewest SortBy = "newest"
	SortByOldest SortBy = "oldest"
)

// SortOrder flips the direction of a name sort. Newest/oldest carry their own
// direction, so Order is ignored for them.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery composes, in order: a case-insensitive substring match against
// name and description, a location-presence filter, an inclusive creation
// date range, and a stable sort (ties broken by id) so repeated queries over
// unchanged data are deterministic.
type ListQuery struct {
	Search      string
	HasLocation *bool
	DateFrom    *time.Time
	DateTo      *time.Time
	SortBy      SortBy
	Order       SortOrder
}

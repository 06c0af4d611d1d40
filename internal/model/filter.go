package model

import "time"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Filter narrows an archive search. Zero values disable a predicate; all set
// predicates are combined with AND.
type Filter struct {
	Origin   Origin
	Type     Type
	From     *time.Time
	To       *time.Time
	HasImage bool
	Symbols  []string
	Query    string
}

type Page struct {
	Items      []Item
	NextCursor *Cursor
}

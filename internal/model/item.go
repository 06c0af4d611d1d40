package model

import (
	"fmt"
	"time"
)

type Origin string

const (
	OriginFMP     Origin = "fmp"
	OriginPolygon Origin = "polygon"
)

type Type string

const (
	TypeNews         Type = "news"
	TypePressRelease Type = "press_release"
)

// FilterAll disables the origin or type filter.
const FilterAll = "all"

func ParseOrigin(s string) (Origin, error) {
	switch o := Origin(s); o {
	case OriginFMP, OriginPolygon:
		return o, nil
	}
	return "", fmt.Errorf("unknown origin %q", s)
}

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeNews, TypePressRelease:
		return t, nil
	}
	return "", fmt.Errorf("unknown type %q", s)
}

// TypeOf returns the item type a provider produces.
func TypeOf(o Origin) Type {
	if o == OriginFMP {
		return TypePressRelease
	}
	return TypeNews
}

// Item is the canonical record shared by every provider. Rows are written once
// and never updated.
type Item struct {
	ID          int64
	Origin      Origin
	Type        Type
	ExternalID  string
	Source      *string
	Symbols     []string
	PublishedAt time.Time
	Title       string
	Summary     *string
	Body        *string
	URL         *string
	ImageURL    *string
	Categories  []string
	ContentHash string
}

type OriginStats struct {
	Origin   Origin
	Type     Type
	Total    int
	Earliest time.Time
	Latest   time.Time
}

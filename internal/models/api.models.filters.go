package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeLayout renders timestamps with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Time is a wrapper around time.Time for custom JSON marshaling
type Time struct {
	time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// MarshalJSON renders the time with TimeLayout, or null when zero.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(TimeLayout))
}

// UnmarshalJSON accepts RFC 3339 strings, with or without fractional seconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTime parses an RFC 3339 timestamp or a plain date.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", s); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339", s)
}

// Bucket is the width of a time-series aggregation bucket.
type Bucket string

const (
	BucketHour  Bucket = "hour"
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
	BucketYear  Bucket = "year"
)

// DefaultBucket is used when a ranged read names no bucket.
const DefaultBucket = BucketDay

// ParseBucket validates a bucket name; empty selects DefaultBucket.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "":
		return DefaultBucket, nil
	case BucketHour, BucketDay, BucketWeek, BucketMonth, BucketYear:
		return b, nil
	default:
		return "", fmt.Errorf("invalid bucket %q: must be one of hour, day, week, month, year", s)
	}
}

// Interval returns the Postgres interval literal for one bucket.
func (b Bucket) Interval() string {
	return "1 " + string(b)
}

// SearchType is a search-engine match strategy.
type SearchType string

const (
	SearchMatch       SearchType = "match"
	SearchMatchPhrase SearchType = "match_phrase"
	SearchFuzzy       SearchType = "fuzzy"
	SearchPrefix      SearchType = "prefix"
	SearchWildcard    SearchType = "wildcard"
	SearchTerm        SearchType = "term"
	SearchRegexp      SearchType = "regexp"

	// SearchSimilar is an alias for SearchFuzzy.
	SearchSimilar SearchType = "similar"
)

var searchTypes = map[SearchType]bool{
	SearchMatch:       true,
	SearchMatchPhrase: true,
	SearchFuzzy:       true,
	SearchPrefix:      true,
	SearchWildcard:    true,
	SearchTerm:        true,
	SearchRegexp:      true,
}

// ParseSearchType validates a search type, resolving aliases. Empty selects match.
func ParseSearchType(s string) (SearchType, error) {
	st := SearchType(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return SearchMatch, nil
	}
	if st == SearchSimilar {
		return SearchFuzzy, nil
	}
	if !searchTypes[st] {
		return "", fmt.Errorf("invalid search_type %q", s)
	}
	return st, nil
}

// ListFilters holds paging parameters for listing sensors
type ListFilters struct {
	Offset int `schema:"offset"`
	Limit  int `schema:"limit"`
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Validate applies defaults and bounds.
func (f *ListFilters) Validate() error {
	if f.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	if f.Limit == 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit < 0 || f.Limit > MaxListLimit {
		return fmt.Errorf("limit must be between 1 and %d", MaxListLimit)
	}
	return nil
}

// ReadingsParams are the raw query parameters of a readings request.
type ReadingsParams struct {
	From   string `schema:"from"`
	To     string `schema:"to"`
	Bucket string `schema:"bucket"`
}

// RangeQuery is a validated ranged read.
type RangeQuery struct {
	From   time.Time
	To     time.Time
	Bucket Bucket
}

// Range resolves the params into a ranged read. It returns nil for a current
// read (no parameters at all) and an error for any partial or invalid set.
func (p ReadingsParams) Range() (*RangeQuery, error) {
	from, to, bucket := strings.TrimSpace(p.From), strings.TrimSpace(p.To), strings.TrimSpace(p.Bucket)
	if from == "" && to == "" && bucket == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("from and to must be provided together")
	}
	start, err := ParseTime(from)
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	end, err := ParseTime(to)
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("to must not be before from")
	}
	b, err := ParseBucket(bucket)
	if err != nil {
		return nil, err
	}
	return &RangeQuery{From: start, To: end, Bucket: b}, nil
}

// SearchParams are the query parameters of a search request.
type SearchParams struct {
	Query      string `schema:"query"`
	Size       int    `schema:"size"`
	SearchType string `schema:"search_type"`
}

// DefaultSearchSize is used when a search names no size.
const DefaultSearchSize = 10

// NearParams are the query parameters of a nearby-sensors request.
type NearParams struct {
	Latitude  *float64 `schema:"latitude"`
	Longitude *float64 `schema:"longitude"`
	Radius    float64  `schema:"radius"`
}

// DefaultNearRadius is the half-width in degrees of the search box.
const DefaultNearRadius = 1.0

// Validate checks coordinates and applies the default radius.
func (p *NearParams) Validate() error {
	if p.Latitude == nil || p.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required")
	}
	if *p.Latitude < -90 || *p.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if *p.Longitude < -180 || *p.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if p.Radius < 0 {
		return fmt.Errorf("radius must not be negative")
	}
	if p.Radius == 0 {
		p.Radius = DefaultNearRadius
	}
	return nil
}

package events

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50

	// MaxPage keeps (page-1)*limit well inside the range of OFFSET.
	MaxPage = 1_000_000

	// MaxPriceCents is the largest value the INTEGER price column holds.
	MaxPriceCents = math.MaxInt32
)

const dateLayout = "2006-01-02"

// ParseFilters reads list filters and pagination from query parameters.
// Malformed values are reported as validation errors; an oversized limit is
// clamped to MaxLimit.
func ParseFilters(values url.Values) (Filters, Pagination, error) {
	filters := Filters{}
	pagination := Pagination{Page: 1, Limit: DefaultLimit}

	filters.Query = strings.TrimSpace(values.Get("q"))
	filters.City = strings.TrimSpace(values.Get("city"))

	from, _, err := parseBound("from", values.Get("from"))
	if err != nil {
		return filters, pagination, err
	}
	to, bareDate, err := parseBound("to", values.Get("to"))
	if err != nil {
		return filters, pagination, err
	}
	if to != nil && bareDate {
		// A bare date covers the whole day.
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return filters, pagination, apperr.Validation("to", "must be on or after from")
	}
	filters.From = from
	filters.To = to

	if filters.MinPrice, err = parseOptionalInt("minPrice", values.Get("minPrice"), 0, MaxPriceCents); err != nil {
		return filters, pagination, err
	}
	if filters.MaxPrice, err = parseOptionalInt("maxPrice", values.Get("maxPrice"), 0, MaxPriceCents); err != nil {
		return filters, pagination, err
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && *filters.MaxPrice < *filters.MinPrice {
		return filters, pagination, apperr.Validation("maxPrice", "must be greater than or equal to minPrice")
	}

	page, err := parseOptionalInt("page", values.Get("page"), 1, MaxPage)
	if err != nil {
		return filters, pagination, err
	}
	if page != nil {
		pagination.Page = *page
	}

	limit, err := parseOptionalInt("limit", values.Get("limit"), 1, math.MaxInt)
	if err != nil {
		return filters, pagination, err
	}
	if limit != nil {
		pagination.Limit = min(*limit, MaxLimit)
	}

	return filters, pagination, nil
}

func parseBound(field, value string) (*time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false, nil
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return &parsed, true, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false, apperr.Validation(field, "must be an RFC3339 timestamp or YYYY-MM-DD date")
	}
	return &parsed, false, nil
}

func parseOptionalInt(field, value string, lowest, highest int) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, apperr.Validation(field, "must be a number")
	}
	if parsed < lowest {
		return nil, apperr.Validation(field, "must be at least "+strconv.Itoa(lowest))
	}
	if parsed > highest {
		return nil, apperr.Validation(field, "must be at most "+strconv.Itoa(highest))
	}
	return &parsed, nil
}

// ParseTimestamp accepts RFC3339 (with or without fractional seconds), a
// zone-less local timestamp interpreted as UTC, or a bare date.
func ParseTimestamp(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperr.Validation(field, "is required")
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", dateLayout} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation(field, "must be a valid timestamp")
}

// Package dashboard turns a flat list of partnership records into the
// aggregates and chart payloads shown on the dashboard screen.
package dashboard

import (
	"strings"
	"time"

	"github.com/sahilchouksey/partner-hub/model"
)

// Status is the derived lifecycle bucket of a record.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiringSoon"
	StatusExpired      Status = "expired"
	StatusProspect     Status = "prospect"
)

// Statuses lists the four buckets in display order.
var Statuses = []Status{StatusActive, StatusExpiringSoon, StatusExpired, StatusProspect}

// ExpiringSoonDays is the window before expiration in which an active record counts as expiring soon.
const ExpiringSoonDays = 30

// DeriveStatus maps a record's stored status and expiration date to a bucket.
// Unrecognised stored statuses fall through as their lowercase form.
func DeriveStatus(status string, expiration *time.Time, now time.Time) Status {
	lower := strings.ToLower(strings.TrimSpace(status))

	if expiration != nil && lower == "active" {
		daysUntilExpiration := expiration.Sub(now).Hours() / 24
		if daysUntilExpiration <= ExpiringSoonDays {
			return StatusExpiringSoon
		}
		return StatusActive
	}

	switch lower {
	case "rejected":
		return StatusExpired
	case "pending", "":
		return StatusProspect
	}
	return Status(lower)
}

// Known reports whether s is one of the four buckets.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusExpiringSoon, StatusExpired, StatusProspect:
		return true
	}
	return false
}

// Derived pairs a record with the status it had at one evaluation instant.
type Derived struct {
	Record model.Partnership
	Status Status
}

// Derive evaluates every record against the same clock reading.
func Derive(records []model.Partnership, now time.Time) []Derived {
	out := make([]Derived, len(records))
	for i, r := range records {
		out[i] = Derived{Record: r, Status: DeriveStatus(r.Status, r.ExpirationDate, now)}
	}
	return out
}

// StatusCounts is the 4-tuple of bucket counts.
type StatusCounts struct {
	Active       int `json:"active"`
	ExpiringSoon int `json:"expiringSoon"`
	Expired      int `json:"expired"`
	Prospect     int `json:"prospect"`
}

// Add counts one record in bucket s. Fallback statuses are not counted.
func (c *StatusCounts) Add(s Status) {
	switch s {
	case StatusActive:
		c.Active++
	case StatusExpiringSoon:
		c.ExpiringSoon++
	case StatusExpired:
		c.Expired++
	case StatusProspect:
		c.Prospect++
	}
}

// Get returns the count for bucket s.
func (c StatusCounts) Get(s Status) int {
	switch s {
	case StatusActive:
		return c.Active
	case StatusExpiringSoon:
		return c.ExpiringSoon
	case StatusExpired:
		return c.Expired
	case StatusProspect:
		return c.Prospect
	}
	return 0
}

// Total is the sum of the four buckets.
func (c StatusCounts) Total() int {
	return c.Active + c.ExpiringSoon + c.Expired + c.Prospect
}

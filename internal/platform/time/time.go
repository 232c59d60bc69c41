// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t, or nil when t is the zero time
// keeps nullable timestamp columns and DTO fields honest
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Deref returns the zero time for a nil pointer, else the pointed-to value
func Deref(pt *time.Time) time.Time {
	if pt == nil {
		return time.Time{}
	}
	return *pt
}

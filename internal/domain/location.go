// Package domain holds the shared types of the safety core: location fixes,
// restricted zones, emergency alerts, contacts, incident reports, and the
// error taxonomy used across component boundaries.
package domain

import "time"

// LocationFix is a single timestamped GPS reading. Immutable once created.
type LocationFix struct {
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	AccuracyMeters  float64   `json:"accuracy,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	ResolvedAddress string    `json:"resolved_address,omitempty"`
}

// HistoryCapacity bounds the tracking session history; the oldest fix is
// evicted when a new one would exceed it.
const HistoryCapacity = 50

// TrackingSession is the mutable state owned by the location tracker.
// Created on the first start, mutated on every fix, cleared on stop.
type TrackingSession struct {
	Active  bool          `json:"active"`
	LastFix *LocationFix  `json:"last_fix,omitempty"`
	History []LocationFix `json:"history"`
}

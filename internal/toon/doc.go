// Package toon holds the status-normalization and availability-tracking
// engine for Toon thermostats: unit conversions, the per-domain payload
// merger and the debounced reachability state machine. Nothing in here does
// I/O.
package toon

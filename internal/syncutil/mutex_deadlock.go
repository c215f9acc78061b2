//go:build deadlock

// Package syncutil holds the mutex types used by the reader drivers.
// This file is compiled with -tags=deadlock.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex reports lock-order inversions and long waits.
type Mutex struct {
	deadlock.Mutex
}

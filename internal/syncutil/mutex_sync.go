//go:build !deadlock

// Package syncutil holds the mutex types used by the reader drivers.
// Build with -tags=deadlock to swap them for github.com/sasha-s/go-deadlock.
package syncutil

import "sync"

// Mutex is sync.Mutex unless built with the deadlock tag.
type Mutex struct {
	sync.Mutex
}

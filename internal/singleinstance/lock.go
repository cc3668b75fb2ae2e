// Package singleinstance keeps a second copy of the tray from starting for the
// same user session.
package singleinstance

import "errors"

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Name returns the object name the lock was taken under.
func (l *Lock) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

package main

import (
	"fmt"

	"github.com/gofrs/flock"
)

// acquireLock takes the single-instance lock. The lock is advisory and is
// released by the kernel if the process dies.
func acquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another ripline instance is already running (lock %s)", path)
	}
	return lock, nil
}

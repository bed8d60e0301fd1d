package disc

import (
	"context"
	"fmt"
	"time"
)

// DriveStatus is the result of a CDROM_DRIVE_STATUS query.
type DriveStatus int

const (
	DriveStatusNoInfo   DriveStatus = 0
	DriveStatusNoDisc   DriveStatus = 1
	DriveStatusTrayOpen DriveStatus = 2
	DriveStatusNotReady DriveStatus = 3
	DriveStatusDiscOK   DriveStatus = 4
)

// String returns a human-readable label for the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusNoInfo:
		return "no_info"
	case DriveStatusNoDisc:
		return "no_disc"
	case DriveStatusTrayOpen:
		return "tray_open"
	case DriveStatusNotReady:
		return "not_ready"
	case DriveStatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// WaitForReady polls the drive once per interval, at most polls times, until
// it reports DriveStatusDiscOK or ctx is cancelled. Freshly inserted discs
// spin up for several seconds before makemkvcon can read them.
func WaitForReady(ctx context.Context, devicePath string, polls int, interval time.Duration) (DriveStatus, error) {
	return waitForReady(ctx, devicePath, polls, interval, CheckDriveStatus)
}

func waitForReady(ctx context.Context, devicePath string, polls int, interval time.Duration, check func(string) (DriveStatus, error)) (DriveStatus, error) {
	var last DriveStatus
	for i := 0; i < polls; i++ {
		status, err := check(devicePath)
		if err != nil {
			return status, err
		}
		last = status
		if status == DriveStatusDiscOK {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
	return last, fmt.Errorf("drive %s not ready after %d polls (last status: %s)", devicePath, polls, last)
}

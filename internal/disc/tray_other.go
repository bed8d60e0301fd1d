//go:build !linux

package disc

// CheckDriveStatus reports DriveStatusDiscOK on platforms without the CDROM
// ioctl; makemkvcon's own inventory decides whether media is present.
func CheckDriveStatus(string) (DriveStatus, error) {
	return DriveStatusDiscOK, nil
}

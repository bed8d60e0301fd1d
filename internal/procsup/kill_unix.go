//go:build unix

package procsup

import "golang.org/x/sys/unix"

func killPID(pid int) error {
	return unix.Kill(pid, unix.SIGKILL)
}

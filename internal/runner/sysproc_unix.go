//go:build unix

package runner

import "syscall"

// detachedProcAttr starts the child in its own process group so a terminal
// interrupt aimed at ripline does not reach it.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

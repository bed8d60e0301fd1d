//go:build !unix && !windows

package runner

import "syscall"

func detachedProcAttr() *syscall.SysProcAttr {
	return nil
}

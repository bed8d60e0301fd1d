//go:build !(linux || darwin || freebsd)

package preflight

import "errors"

func accessReadWrite(string) error {
	return nil
}

func freeBytes(string) (uint64, error) {
	return 0, errors.New("free space not available on this platform")
}

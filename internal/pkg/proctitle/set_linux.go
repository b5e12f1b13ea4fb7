//go:build linux

package proctitle

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Set renames the process so it shows up as title in ps/top.
// The kernel keeps at most 15 bytes; the applied name is returned.
func Set(title string) (string, error) {
	name, err := prepare(title)
	if err != nil {
		return "", err
	}

	b := make([]byte, maxNameLen+1)
	copy(b, name)
	if err := unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&b[0])), 0, 0, 0); err != nil {
		return "", err
	}
	return name, nil
}

package sender

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Symbolic name and message for a platform error code (sign ignored)
func describeErrno(code int) (text string) {
	if code < 0 {
		code = -code
	}
	errno := unix.Errno(code)

	name := unix.ErrnoName(errno)
	if name == "" {
		name = fmt.Sprintf("E%d", code)
	}
	text = fmt.Sprintf("%s (%d): %s", name, code, errno.Error())
	return
}

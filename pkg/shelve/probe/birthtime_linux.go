//go:build linux

package probe

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks statx for STATX_BTIME, following symlinks. Older kernels and filesystems such
// as tmpfs do not report it, in which case ok is false.
func birthTime(path string, _ os.FileInfo) (time.Time, bool) {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, false
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, false
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), true
}

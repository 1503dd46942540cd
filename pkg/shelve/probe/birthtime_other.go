//go:build !darwin && !linux

package probe

import (
	"os"
	"time"
)

// birthTime is unavailable on this platform; callers use the modification time.
func birthTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}

//go:build unix

package match

import (
	"math"

	"golang.org/x/sys/unix"
)

// fileLimit returns the soft RLIMIT_NOFILE, or 0 when it cannot be read.
func fileLimit() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return 0
	}
	if rl.Cur > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(rl.Cur)
}

//go:build linux

package sysinfo

import (
	"os"
	"path/filepath"
	"strings"
)

const sysBlockPath = "/sys/class/block"

// diskKind reads the rotational flag of the block device backing a
// partition. Partitions have no queue directory of their own, so the
// parent device is checked as well.
func diskKind(device string) string {
	if !strings.HasPrefix(device, "/dev/") {
		return DiskUnknown
	}
	dir, err := filepath.EvalSymlinks(filepath.Join(sysBlockPath, filepath.Base(device)))
	if err != nil {
		return DiskUnknown
	}

	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		data, err := os.ReadFile(filepath.Join(candidate, "queue", "rotational"))
		if err == nil {
			return kindFromRotational(string(data))
		}
	}
	return DiskUnknown
}

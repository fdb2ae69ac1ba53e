//go:build !linux

package sysinfo

func diskKind(device string) string {
	return DiskUnknown
}

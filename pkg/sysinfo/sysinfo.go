// Package sysinfo takes point-in-time snapshots of the host: names and
// versions, CPU core counts, memory, swap and mounted disks.
package sysinfo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Disk kinds
const (
	DiskSSD     = "SSD"
	DiskHDD     = "HDD"
	DiskUnknown = "Unknown"
)

// Disk describes one mounted filesystem
type Disk struct {
	Kind           string `json:"kind" yaml:"kind"`
	FileSystem     string `json:"file_system" yaml:"file_system"`
	Device         string `json:"device" yaml:"device"`
	Mountpoint     string `json:"mountpoint" yaml:"mountpoint"`
	AvailableBytes uint64 `json:"available_bytes" yaml:"available_bytes"`
	Available      string `json:"available" yaml:"available"`
}

// SystemInfo is a snapshot of the host. Memory and swap are in bytes.
type SystemInfo struct {
	SystemName      string `json:"system_name" yaml:"system_name"`
	KernelVersion   string `json:"kernel_version" yaml:"kernel_version"`
	OSVersion       string `json:"os_version" yaml:"os_version"`
	Hostname        string `json:"hostname" yaml:"hostname"`
	CPUCores        int    `json:"cpu_cores" yaml:"cpu_cores"`
	CPUVirtualCores int    `json:"cpu_virtual_cores" yaml:"cpu_virtual_cores"`
	TotalMemory     uint64 `json:"total_memory" yaml:"total_memory"`
	UsedMemory      uint64 `json:"used_memory" yaml:"used_memory"`
	TotalSwap       uint64 `json:"total_swap" yaml:"total_swap"`
	UsedSwap        uint64 `json:"used_swap" yaml:"used_swap"`
	Disks           []Disk `json:"disks" yaml:"disks"`
}

// Provider produces system snapshots
type Provider interface {
	Snapshot(ctx context.Context) (*SystemInfo, error)
}

// HostProvider reads the local host through gopsutil
type HostProvider struct {
	// AllPartitions includes pseudo and duplicate filesystems
	AllPartitions bool
}

// NewHostProvider creates a provider for the local host
func NewHostProvider() *HostProvider {
	return &HostProvider{}
}

// Snapshot collects a fresh SystemInfo
func (p *HostProvider) Snapshot(ctx context.Context) (*SystemInfo, error) {
	info := &SystemInfo{}

	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read host info: %w", err)
	}
	info.SystemName = hi.Platform
	if info.SystemName == "" {
		info.SystemName = hi.OS
	}
	info.KernelVersion = hi.KernelVersion
	info.OSVersion = hi.PlatformVersion
	info.Hostname = hi.Hostname

	// Physical counts are unavailable on some virtualised hosts
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.CPUCores = n
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}
	info.CPUVirtualCores = logical
	if info.CPUCores == 0 {
		info.CPUCores = logical
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read memory: %w", err)
	}
	info.TotalMemory = vm.Total
	info.UsedMemory = vm.Used

	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read swap: %w", err)
	}
	info.TotalSwap = sw.Total
	info.UsedSwap = sw.Used

	disks, err := p.disks(ctx)
	if err != nil {
		return nil, err
	}
	info.Disks = disks

	return info, nil
}

func (p *HostProvider) disks(ctx context.Context) ([]Disk, error) {
	parts, err := disk.PartitionsWithContext(ctx, p.AllPartitions)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	disks := make([]Disk, 0, len(parts))
	for _, part := range parts {
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil {
			// unreadable mounts (permissions, stale network shares) are skipped
			continue
		}
		disks = append(disks, Disk{
			Kind:           diskKind(part.Device),
			FileSystem:     part.Fstype,
			Device:         part.Device,
			Mountpoint:     part.Mountpoint,
			AvailableBytes: usage.Free,
			Available:      strconv.FormatUint(usage.Free, 10),
		})
	}
	return disks, nil
}

// ToMap returns the snapshot as display labels mapped to values
func (s *SystemInfo) ToMap() map[string]string {
	m := map[string]string{
		"System Name":           s.SystemName,
		"System kernel version": s.KernelVersion,
		"System OS version":     s.OSVersion,
		"Hostname":              s.Hostname,
		"CPU Cores":             strconv.Itoa(s.CPUCores),
		"CPU Virtual Cores":     strconv.Itoa(s.CPUVirtualCores),
		"Total Memory":          strconv.FormatUint(s.TotalMemory, 10),
		"Used Memory":           strconv.FormatUint(s.UsedMemory, 10),
		"Total Swap":            strconv.FormatUint(s.TotalSwap, 10),
		"Used Swap":             strconv.FormatUint(s.UsedSwap, 10),
	}
	for i, d := range s.Disks {
		prefix := fmt.Sprintf("Disk %d ", i+1)
		m[prefix+"Type"] = d.Kind
		m[prefix+"File System"] = d.FileSystem
		m[prefix+"Free Space"] = d.Available
	}
	return m
}

func kindFromRotational(flag string) string {
	switch strings.TrimSpace(flag) {
	case "0":
		return DiskSSD
	case "1":
		return DiskHDD
	default:
		return DiskUnknown
	}
}

package report

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo records where a report was produced.
type HostInfo struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
}

// Meta is the header shared by every report format.
type Meta struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	Host        HostInfo  `json:"host"`
}

// NewMeta stamps a report with a fresh run id and the local host.
func NewMeta(source string) Meta {
	return Meta{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Source:      source,
		Host:        CollectHostInfo(),
	}
}

// CollectHostInfo falls back to os.Hostname and runtime when gopsutil
// cannot read the host.
func CollectHostInfo() HostInfo {
	info, err := host.Info()
	if err != nil {
		hostname, _ := os.Hostname()
		return HostInfo{Hostname: hostname, Platform: runtime.GOOS}
	}

	hi := HostInfo{
		Hostname:        info.Hostname,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
	}
	if hi.Platform == "" {
		hi.Platform = info.OS
	}
	if hi.Platform == "" {
		hi.Platform = runtime.GOOS
	}
	return hi
}

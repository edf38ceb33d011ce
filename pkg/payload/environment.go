package payload

import (
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"treblle-hq/relay/pkg/schema"
)

var (
	envOnce      sync.Once
	cachedServer schema.ServerInfo
	cachedLang   schema.LanguageInfo
)

// Environment returns the host facts shipped in every payload. They are
// resolved once per process and cached; none of them can change while the
// host is running.
func Environment() schema.ServerInfo {
	resolveEnvironment()
	return cachedServer
}

// Language identifies the runtime in every payload.
func Language() schema.LanguageInfo {
	resolveEnvironment()
	return cachedLang
}

func resolveEnvironment() {
	envOnce.Do(func() {
		zone, _ := time.Now().Zone()
		cachedServer = schema.ServerInfo{
			IP:       localIP(),
			Timezone: zone,
			Protocol: "HTTP/1.1",
			OS: schema.OsInfo{
				Name:         runtime.GOOS,
				Release:      osRelease(),
				Architecture: runtime.GOARCH,
			},
		}
		cachedLang = schema.LanguageInfo{
			Name:    "go",
			Version: strings.TrimPrefix(runtime.Version(), "go"),
		}
	})
}

// localIP picks the first non-loopback unicast address without generating
// network traffic.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "unknown"
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "unknown"
}

// osRelease reports the kernel release where the platform exposes it.
func osRelease() string {
	if data, err := os.ReadFile("/proc/sys/kernel/osrelease"); err == nil {
		return strings.TrimSpace(string(data))
	}
	return "unknown"
}

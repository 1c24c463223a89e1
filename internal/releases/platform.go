package releases

// OS is a desktop operating system family.
type OS string

// Operating systems.
const (
	OSWindows OS = "windows"
	OSMac     OS = "mac"
	OSLinux   OS = "linux"
	OSUnknown OS = "unknown"
)

// Arch is a CPU architecture as named by the release assets.
type Arch string

// Architectures.
const (
	ArchX64     Arch = "x64"
	ArchARM64   Arch = "arm64"
	ArchI32     Arch = "i32"
	ArchUnknown Arch = "unknown"
)

const unknownLabel = "未知系統"

// Platform pairs an OS with an architecture.
type Platform struct {
	OS   OS   `json:"os"`
	Arch Arch `json:"arch"`
}

// DetectPlatform maps Go's GOOS/GOARCH names onto a Platform.
func DetectPlatform(goos, goarch string) Platform {
	var os OS
	switch goos {
	case "windows":
		os = OSWindows
	case "darwin":
		os = OSMac
	case "linux":
		os = OSLinux
	default:
		return Platform{OS: OSUnknown, Arch: ArchUnknown}
	}

	arch := ArchUnknown
	switch goarch {
	case "amd64":
		arch = ArchX64
	case "arm64":
		arch = ArchARM64
	case "386":
		arch = ArchI32
	}
	return Platform{OS: os, Arch: arch}
}

// ParsePlatform parses "os/arch" using the asset vocabulary (e.g. "mac/arm64").
func ParsePlatform(s string) Platform {
	for _, p := range SupportedPlatforms() {
		if string(p.OS)+"/"+string(p.Arch) == s {
			return p
		}
	}
	return Platform{OS: OSUnknown, Arch: ArchUnknown}
}

// SupportedPlatforms lists the platforms that ship an installer.
func SupportedPlatforms() []Platform {
	return []Platform{
		{OSWindows, ArchX64},
		{OSWindows, ArchI32},
		{OSMac, ArchARM64},
		{OSMac, ArchX64},
		{OSLinux, ArchX64},
		{OSLinux, ArchARM64},
	}
}

// String returns "os/arch".
func (p Platform) String() string {
	return string(p.OS) + "/" + string(p.Arch)
}

// Label is the human name of the platform, or 未知系統 when unsupported.
func (p Platform) Label() string {
	switch p {
	case Platform{OSMac, ArchARM64}:
		return "macOS (Apple Silicon)"
	case Platform{OSMac, ArchX64}:
		return "macOS (Intel)"
	case Platform{OSWindows, ArchX64}:
		return "Windows (X64)"
	case Platform{OSWindows, ArchI32}:
		return "Windows (x86)"
	case Platform{OSLinux, ArchX64}:
		return "Linux (amd64)"
	case Platform{OSLinux, ArchARM64}:
		return "Linux (arm64)"
	default:
		return unknownLabel
	}
}

// AssetSuffix is the file name suffix of the platform's installer.
// Unsupported platforms return "".
func (p Platform) AssetSuffix() string {
	switch p.OS {
	case OSMac:
		if p.Arch == ArchARM64 {
			return "arm64.dmg"
		}
		if p.Arch == ArchX64 {
			return "x64.dmg"
		}
	case OSLinux:
		if p.Arch == ArchARM64 {
			return "arm64.deb"
		}
		if p.Arch == ArchX64 {
			return "amd64.deb"
		}
	case OSWindows:
		if p.Arch == ArchI32 {
			return "ia32.exe"
		}
		if p.Arch == ArchX64 || p.Arch == ArchARM64 {
			return "x64.exe"
		}
	}
	return ""
}

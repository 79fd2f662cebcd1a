// Package platform identifies the host operating system and architecture.
// Strategies and checksum tables filter on the resulting profile.
package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// Series is an Ubuntu release identified by its version number.
type Series string

const (
	SeriesJammy  Series = "22.04"
	SeriesFocal  Series = "20.04"
	SeriesBionic Series = "18.04"
)

// Arch is a machine architecture as reported by the kernel.
type Arch string

const (
	ArchAMD64 Arch = "x86_64"
	ArchARM64 Arch = "aarch64"
)

// Profile describes the host operating system.
type Profile struct {
	System  string
	Release string
	Machine Arch
}

// Series maps the release to a known Ubuntu series, or "" when the host is
// not running a recognised Ubuntu release.
func (p Profile) Series() Series {
	if p.System != "ubuntu" {
		return ""
	}
	switch Series(p.Release) {
	case SeriesJammy, SeriesFocal, SeriesBionic:
		return Series(p.Release)
	}
	return ""
}

// Detect builds the host profile from /etc/os-release and the Go runtime.
func Detect() Profile {
	return detectFrom("/etc/os-release")
}

func detectFrom(osReleasePath string) Profile {
	p := Profile{
		System:  runtime.GOOS,
		Machine: goArchToMachine(runtime.GOARCH),
	}

	id, like, version := parseOSRelease(osReleasePath)
	if id != "" {
		p.System = id
	}
	// Ubuntu derivatives are treated as Ubuntu; they install the same
	// packages from the same archives.
	if p.System != "ubuntu" {
		for _, l := range strings.Fields(like) {
			if l == "ubuntu" {
				p.System = "ubuntu"
				break
			}
		}
	}
	p.Release = version
	return p
}

func parseOSRelease(path string) (id, like, version string) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "ID="):
			id = trimValue(strings.TrimPrefix(line, "ID="))
		case strings.HasPrefix(line, "ID_LIKE="):
			like = trimValue(strings.TrimPrefix(line, "ID_LIKE="))
		case strings.HasPrefix(line, "VERSION_ID="):
			version = trimValue(strings.TrimPrefix(line, "VERSION_ID="))
		}
	}
	return id, like, version
}

func trimValue(val string) string {
	return strings.Trim(val, "\"'")
}

func goArchToMachine(goarch string) Arch {
	switch goarch {
	case "amd64":
		return ArchAMD64
	case "arm64":
		return ArchARM64
	default:
		return Arch(goarch)
	}
}

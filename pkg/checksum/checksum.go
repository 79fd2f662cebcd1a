// Package checksum validates operator-attached vendor artifacts against the
// known-good releases for the host architecture and series.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/hwobserve/hwobserve/pkg/platform"
)

// VersionInfo identifies one supported release of a vendor tool.
type VersionInfo struct {
	Version string
	Archs   []platform.Arch
	SHA256  string

	// AllSeries accepts the artifact on any Ubuntu series; otherwise the
	// host series must be listed in Series.
	AllSeries bool
	Series    []platform.Series
}

func (v VersionInfo) matches(p platform.Profile) bool {
	archOK := false
	for _, a := range v.Archs {
		if a == p.Machine {
			archOK = true
			break
		}
	}
	if !archOK {
		return false
	}
	if v.AllSeries {
		return true
	}
	for _, s := range v.Series {
		if s == p.Series() {
			return true
		}
	}
	return false
}

// FileSHA256 returns the hex SHA-256 digest of the file at path.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Validate reports whether the file at path is one of the supported releases
// for the given host profile.
func Validate(infos []VersionInfo, path string, p platform.Profile) (bool, error) {
	digest, err := FileSHA256(path)
	if err != nil {
		return false, err
	}
	for _, info := range infos {
		if info.matches(p) && info.SHA256 == digest {
			return true, nil
		}
	}
	return false, nil
}

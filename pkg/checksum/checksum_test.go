package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/hwobserve/hwobserve/pkg/platform"
)

func jammyAMD64() platform.Profile {
	return platform.Profile{System: "ubuntu", Release: "22.04", Machine: platform.ArchAMD64}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestFileSHA256(t *testing.T) {
	path := writeFile(t, "hello")
	got, err := FileSHA256(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got != digest("hello") {
		t.Fatalf("digest = %s", got)
	}
}

func TestValidateMatch(t *testing.T) {
	path := writeFile(t, "release artifact")
	infos := []VersionInfo{{
		Version:   "1.0",
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    digest("release artifact"),
		AllSeries: true,
	}}
	ok, err := Validate(infos, path, jammyAMD64())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !ok {
		t.Fatalf("valid artifact rejected")
	}
}

func TestValidateWrongDigest(t *testing.T) {
	path := writeFile(t, "tampered")
	infos := []VersionInfo{{
		Version:   "1.0",
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    digest("genuine"),
		AllSeries: true,
	}}
	ok, err := Validate(infos, path, jammyAMD64())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok {
		t.Fatalf("tampered artifact accepted")
	}
}

func TestValidateFiltersBySeries(t *testing.T) {
	content := "series-specific build"
	path := writeFile(t, content)
	infos := []VersionInfo{{
		Version: "1.0",
		Archs:   []platform.Arch{platform.ArchAMD64},
		SHA256:  digest(content),
		Series:  []platform.Series{platform.SeriesFocal},
	}}

	focal := platform.Profile{System: "ubuntu", Release: "20.04", Machine: platform.ArchAMD64}
	if ok, _ := Validate(infos, path, focal); !ok {
		t.Fatalf("artifact rejected on its own series")
	}
	if ok, _ := Validate(infos, path, jammyAMD64()); ok {
		t.Fatalf("artifact accepted on the wrong series")
	}
}

func TestValidateFiltersByArch(t *testing.T) {
	content := "amd64-only build"
	path := writeFile(t, content)
	infos := []VersionInfo{{
		Version:   "1.0",
		Archs:     []platform.Arch{platform.ArchAMD64},
		SHA256:    digest(content),
		AllSeries: true,
	}}
	arm := platform.Profile{System: "ubuntu", Release: "22.04", Machine: platform.ArchARM64}
	if ok, _ := Validate(infos, path, arm); ok {
		t.Fatalf("amd64 artifact accepted on arm64")
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := Validate(nil, filepath.Join(t.TempDir(), "absent"), jammyAMD64())
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestVersionTablesWellFormed(t *testing.T) {
	tables := map[string][]VersionInfo{
		"storcli":  StorCLIVersions,
		"perccli":  PercCLIVersions,
		"sas2ircu": SAS2IRCUVersions,
		"sas3ircu": SAS3IRCUVersions,
	}
	for name, infos := range tables {
		if len(infos) == 0 {
			t.Fatalf("%s version table empty", name)
		}
		for _, info := range infos {
			if len(info.SHA256) != 64 {
				t.Fatalf("%s %s: digest %q is not sha256", name, info.Version, info.SHA256)
			}
			if len(info.Archs) == 0 {
				t.Fatalf("%s %s: no architectures", name, info.Version)
			}
			if !info.AllSeries && len(info.Series) == 0 {
				t.Fatalf("%s %s: no series and not AllSeries", name, info.Version)
			}
		}
	}
}

package engine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed releases.yaml
var releasesYAML []byte

// Release describes one downloadable engine archive for a platform.
type Release struct {
	OS      string `yaml:"os"`
	Arch    string `yaml:"arch"`
	Version string `yaml:"version"`
	Archive string `yaml:"archive"`
	SHA256  string `yaml:"sha256"`
}

// Manifest is the pinned set of known engine releases.
type Manifest struct {
	BaseURL        string    `yaml:"base_url"`
	DefaultVersion string    `yaml:"default_version"`
	Releases       []Release `yaml:"releases"`
}

// LoadManifest parses the embedded release manifest.
func LoadManifest() (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(releasesYAML, &m); err != nil {
		return nil, fmt.Errorf("failed to parse release manifest: %w", err)
	}
	if m.BaseURL == "" || len(m.Releases) == 0 {
		return nil, fmt.Errorf("release manifest is incomplete")
	}
	return &m, nil
}

// Find returns the release for the given platform and version.
func (m *Manifest) Find(osName, arch, version string) (*Release, error) {
	if version == "" {
		version = m.DefaultVersion
	}
	for i := range m.Releases {
		r := &m.Releases[i]
		if r.OS == osName && r.Arch == arch && r.Version == version {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no engine release for %s/%s version %s", osName, arch, version)
}

// URL returns the download URL for the release under baseURL.
func (r *Release) URL(baseURL string) string {
	return baseURL + "/" + r.Archive
}

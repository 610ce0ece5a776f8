package loader

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/Carmen-Shannon/oxy-morph/engine/grid"
)

// DefaultTransition is used when a manifest does not set transition_ms.
const DefaultTransition = 1000 * time.Millisecond

// Manifest lists the variants to display, in order. Variant 0 is shown first.
type Manifest struct {
	// Title is shown in the window title bar.
	Title string `toml:"title"`

	// TransitionMS is the duration of a variant switch in milliseconds.
	TransitionMS int `toml:"transition_ms"`

	// Variants are the datasets, either fetched from a source or derived from two others.
	Variants []VariantSpec `toml:"variant"`
}

// VariantSpec describes one variant in a manifest.
type VariantSpec struct {
	// Name identifies the variant in the UI and in derive references.
	Name string `toml:"name"`

	// Hue is the hue range in turns that the variant's magnitudes are coloured across.
	Hue [2]float64 `toml:"hue"`

	// Source is a URL or file path of the grid. Mutually exclusive with Derive.
	Source string `toml:"source"`

	// Derive computes the grid from two earlier variants. Mutually exclusive with Source.
	Derive *DeriveSpec `toml:"derive"`
}

// DeriveSpec names the inputs and comparison of a derived variant.
type DeriveSpec struct {
	Base    string       `toml:"base"`
	Other   string       `toml:"other"`
	Compare grid.Compare `toml:"compare"`
}

// Transition returns the configured transition duration.
func (m *Manifest) Transition() time.Duration {
	if m.TransitionMS <= 0 {
		return DefaultTransition
	}
	return time.Duration(m.TransitionMS) * time.Millisecond
}

// DisplayTitle returns the title, falling back to a generic one.
func (m *Manifest) DisplayTitle() string {
	return common.Coalesce(m.Title, "oxy-morph")
}

// LoadManifest reads and validates a manifest file. Relative file sources are resolved
// against the manifest's directory.
//
// Parameters:
//   - path: the manifest file path
//
// Returns:
//   - *Manifest: the decoded manifest
//   - error: an error if the file cannot be read, decoded, or validated
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.resolveSources(filepath.Dir(path))
	return m, nil
}

// DecodeManifest decodes and validates a manifest from r.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - *Manifest: the decoded manifest
//   - error: a decode error or the first validation failure
func DecodeManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	md, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown manifest keys: %v", undecoded)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that variant names are unique, each variant has exactly one of source
// or derive, and every derive references an earlier variant with a known comparison.
//
// Returns:
//   - error: the first problem found, or nil
func (m *Manifest) Validate() error {
	if len(m.Variants) == 0 {
		return errors.New("manifest declares no variants")
	}
	seen := make(map[string]bool, len(m.Variants))
	for i, v := range m.Variants {
		if v.Name == "" {
			return fmt.Errorf("variant %d has no name", i)
		}
		if seen[v.Name] {
			return fmt.Errorf("variant %q declared twice", v.Name)
		}
		switch {
		case v.Source != "" && v.Derive != nil:
			return fmt.Errorf("variant %q sets both source and derive", v.Name)
		case v.Source == "" && v.Derive == nil:
			return fmt.Errorf("variant %q sets neither source nor derive", v.Name)
		case v.Derive != nil:
			for _, ref := range []string{v.Derive.Base, v.Derive.Other} {
				if !seen[ref] {
					return fmt.Errorf("variant %q derives from %q, which is not declared before it", v.Name, ref)
				}
			}
			if _, err := v.Derive.Compare.Func(); err != nil {
				return fmt.Errorf("variant %q: %w", v.Name, err)
			}
		}
		seen[v.Name] = true
	}
	return nil
}

func (m *Manifest) resolveSources(dir string) {
	for i := range m.Variants {
		src := m.Variants[i].Source
		if src == "" || isURL(src) || filepath.IsAbs(src) {
			continue
		}
		m.Variants[i].Source = filepath.Join(dir, src)
	}
}

func isURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

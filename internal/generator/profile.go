package generator

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/chartconfig"
	"github.com/starford/gantt/internal/checksum"
)

// ProfileSpec names a chart configuration document and the file-name prefix
// of the exports it applies to.
type ProfileSpec struct {
	Name   string
	Prefix string
	Config string
}

// Profile is a loaded chart configuration.
type Profile struct {
	Name       string
	Prefix     string
	ConfigPath string
	Config     *chartconfig.ChartConfig
	// Checksum identifies the normalized configuration.
	Checksum string
}

// LoadProfiles loads every profile document. Relative config paths are resolved against
// root. The first failure is returned as a ConfigError.
func LoadProfiles(root string, specs []ProfileSpec) ([]*Profile, error) {
	profiles := make([]*Profile, 0, len(specs))
	for _, spec := range specs {
		p := spec.Config
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		cfg, err := chartconfig.Load(p)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", spec.Name, err)
		}
		data, err := json.Marshal(cfg)
		if err != nil {
			return nil, &apperr.ConfigError{Kind: apperr.InvalidValue, Source: spec.Config, Err: err}
		}
		profiles = append(profiles, &Profile{
			Name:       spec.Name,
			Prefix:     spec.Prefix,
			ConfigPath: spec.Config,
			Config:     cfg,
			Checksum:   checksum.Sum(data),
		})
	}
	return profiles, nil
}

// Dispatcher selects the profile responsible for an export file.
type Dispatcher struct {
	profiles []*Profile
}

// NewDispatcher orders profiles so that deeper CSV directories and longer
// prefixes are tried first.
func NewDispatcher(profiles []*Profile) *Dispatcher {
	sorted := append([]*Profile(nil), profiles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := cleanDir(sorted[i].Config.CSVDirectory), cleanDir(sorted[j].Config.CSVDirectory)
		if len(di) != len(dj) {
			return len(di) > len(dj)
		}
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &Dispatcher{profiles: sorted}
}

// Profiles returns the profiles in match order.
func (d *Dispatcher) Profiles() []*Profile {
	return d.profiles
}

// Match returns the profile for a workspace-relative file path. The profile's
// CSV directory must contain the file and its prefix must start the file's
// base name; an empty prefix matches every file in the directory.
func (d *Dispatcher) Match(file string) (*Profile, error) {
	file = path.Clean(filepath.ToSlash(file))
	base := path.Base(file)
	for _, p := range d.profiles {
		if !within(file, cleanDir(p.Config.CSVDirectory)) {
			continue
		}
		if strings.HasPrefix(base, p.Prefix) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", file, apperr.ErrNoProfile)
}

// Dirs returns the distinct CSV directories of all profiles.
func (d *Dispatcher) Dirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range d.profiles {
		dir := cleanDir(p.Config.CSVDirectory)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// OutputPath returns where the chart for file is written: the profile's
// target directory plus the file's path below the CSV directory, with the
// extension replaced by ext.
func OutputPath(p *Profile, file, ext string) string {
	file = path.Clean(filepath.ToSlash(file))
	rel := strings.TrimPrefix(file, cleanDir(p.Config.CSVDirectory)+"/")
	if cleanDir(p.Config.CSVDirectory) == "." {
		rel = file
	}
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return path.Join(cleanDir(p.Config.TargetDirectory), rel+ext)
}

func cleanDir(dir string) string {
	return path.Clean(filepath.ToSlash(dir))
}

func within(file, dir string) bool {
	if dir == "." {
		return !strings.HasPrefix(file, "../")
	}
	return strings.HasPrefix(file, dir+"/")
}

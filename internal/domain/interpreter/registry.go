package interpreter

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentProbes bounds how many version probes run at once.
const maxConcurrentProbes = 4

// Prober runs an interpreter's version probe.
type Prober interface {
	Probe(p Profile) (string, error)
}

// Registry is the immutable name → profile table plus a cached view of
// which interpreters are installed on the host.
type Registry struct {
	profiles map[string]Profile
	names    []string
	fallback Profile

	prober Prober
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	available []Profile
	probedAt  time.Time
}

// NewRegistry builds the table from the builtin catalog overlaid with extra.
// defaultName selects the fallback profile; when it is not in the table the
// platform default is used instead.
func NewRegistry(defaultName string, extra ...Profile) *Registry {
	profiles := make(map[string]Profile)
	for _, p := range Builtins() {
		profiles[p.Name] = p
	}
	for _, p := range extra {
		profiles[p.Name] = p
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fallback, ok := profiles[defaultName]
	if !ok {
		fallback = profiles[PlatformDefault()]
	}

	return &Registry{
		profiles: profiles,
		names:    names,
		fallback: fallback,
		now:      time.Now,
	}
}

// WithProber sets the prober used by Available and how long its results
// are reused. Call before the registry is shared.
func (r *Registry) WithProber(prober Prober, ttl time.Duration) *Registry {
	r.prober = prober
	r.ttl = ttl
	return r
}

// Resolve returns the profile registered under name, or the fallback
// profile for unknown names. It never fails.
func (r *Registry) Resolve(name string) Profile {
	if p, ok := r.profiles[name]; ok {
		return p
	}
	return r.fallback
}

// Lookup returns the profile registered under name.
func (r *Registry) Lookup(name string) (Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Default returns the fallback profile.
func (r *Registry) Default() Profile {
	return r.fallback
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Available probes every registered profile and returns those whose version
// probe succeeds, sorted by name. Each probe spawns a process, so results
// are cached for the configured TTL.
func (r *Registry) Available() []Profile {
	if r.prober == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.available != nil && r.ttl > 0 && r.now().Sub(r.probedAt) < r.ttl {
		return append([]Profile(nil), r.available...)
	}

	ok := make([]bool, len(r.names))
	var g errgroup.Group
	g.SetLimit(maxConcurrentProbes)
	for i, name := range r.names {
		i := i
		p := r.profiles[name]
		g.Go(func() error {
			_, err := r.prober.Probe(p)
			ok[i] = err == nil
			return nil
		})
	}
	_ = g.Wait()

	available := make([]Profile, 0, len(r.names))
	for i, name := range r.names {
		if ok[i] {
			available = append(available, r.profiles[name])
		}
	}

	r.available = available
	r.probedAt = r.now()
	return append([]Profile(nil), available...)
}

type catalogFile struct {
	Shells []Profile `yaml:"shells"`
}

// LoadCatalog reads additional profiles from a YAML file of the form
//
//	shells:
//	  - name: fish
//	    program: fish
//	    argument: -c
//	    version: ["--version"]
func LoadCatalog(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shell catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse shell catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Shells))
	for i, p := range file.Shells {
		if p.Name == "" || p.Program == "" {
			return nil, fmt.Errorf("shell catalog %s: entry %d needs name and program", path, i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("shell catalog %s: duplicate name %q", path, p.Name)
		}
		seen[p.Name] = true
	}
	return file.Shells, nil
}

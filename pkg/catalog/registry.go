package catalog

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/pkg/errors"
)

var ErrDuplicateService = errors.New("service already registered")

//go:embed data/*.yaml
var embedded embed.FS

// Registry indexes service tables by prefix.
type Registry struct {
	services map[string]*Service
}

func NewRegistry() *Registry {
	return &Registry{services: make(map[string]*Service)}
}

func (r *Registry) Register(svc *Service) error {
	if svc == nil || svc.Prefix == "" {
		return errors.New("cannot register a service without prefix")
	}
	if _, ok := r.services[svc.Prefix]; ok {
		return errors.Wrapf(ErrDuplicateService, "prefix %q", svc.Prefix)
	}
	r.services[svc.Prefix] = svc
	return nil
}

func (r *Registry) Lookup(prefix string) (*Service, bool) {
	svc, ok := r.services[prefix]
	return svc, ok
}

func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.services))
	for p := range r.services {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Classify returns the access level of a "prefix:Action" token. Wildcard
// tokens and unknown services or actions are not classified.
func (r *Registry) Classify(token string) (access.Level, bool) {
	prefix, name, ok := strings.Cut(token, ":")
	if !ok {
		return access.Unknown, false
	}
	svc, ok := r.Lookup(prefix)
	if !ok {
		return access.Unknown, false
	}
	action, ok := svc.Action(name)
	if !ok {
		return access.Unknown, false
	}
	return action.AccessLevel, true
}

// LoadFS registers every *.yaml table found in dir of fsys.
func (r *Registry) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", e.Name())
		}
		svc, err := Load(data)
		if err != nil {
			return errors.Wrapf(err, "table %s", e.Name())
		}
		if err := r.Register(svc); err != nil {
			return err
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of the service tables shipped with this
// package. A broken embedded table is a build defect and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg := NewRegistry()
		if err := reg.LoadFS(embedded, "data"); err != nil {
			panic(err)
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

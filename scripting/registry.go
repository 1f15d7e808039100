package scripting

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/agext/levenshtein"
)

// Factory builds a ScriptLanguage. Languages register one from init.
type Factory func() ScriptLanguage

type registration struct {
	name    string
	factory Factory
	lang    ScriptLanguage
}

// Registry maps language names to factories. Each factory runs at most once
// per registration; the language it returns is shared by later lookups.
type Registry struct {
	mu    sync.RWMutex
	langs map[string]*registration
}

func NewRegistry() *Registry {
	return &Registry{langs: make(map[string]*registration)}
}

// Register adds a language under name, replacing an earlier registration
// with the same name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.langs[strings.ToLower(name)] = &registration{name: name, factory: factory}
}

func (r *Registry) instance(reg *registration) ScriptLanguage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.lang == nil {
		reg.lang = reg.factory()
	}
	return reg.lang
}

// registrations returns the registrations sorted by name.
func (r *Registry) registrations() []*registration {
	r.mu.RLock()
	regs := make([]*registration, 0, len(r.langs))
	for _, reg := range r.langs {
		regs = append(regs, reg)
	}
	r.mu.RUnlock()
	slices.SortFunc(regs, func(a, b *registration) int { return strings.Compare(a.name, b.name) })
	return regs
}

// Lookup finds a language by its registered name or by one of its aliases,
// ignoring case.
func (r *Registry) Lookup(name string) (ScriptLanguage, error) {
	r.mu.RLock()
	reg, ok := r.langs[strings.ToLower(name)]
	r.mu.RUnlock()
	if ok {
		return r.instance(reg), nil
	}
	for _, reg := range r.registrations() {
		lang := r.instance(reg)
		if containsFold(lang.Names(), name) || strings.EqualFold(lang.LanguageName(), name) {
			return lang, nil
		}
	}
	if guess := r.closestName(name); guess != "" {
		return nil, unknownLanguage("no language named %q (did you mean %q?)", name, guess)
	}
	return nil, unknownLanguage("no language named %q", name)
}

// closestName returns the registered name or alias nearest to name, if any is
// within two edits.
func (r *Registry) closestName(name string) string {
	best, bestDist := "", 3
	for _, reg := range r.registrations() {
		lang := r.instance(reg)
		for _, candidate := range append([]string{lang.LanguageName()}, lang.Names()...) {
			d := levenshtein.Distance(strings.ToLower(name), strings.ToLower(candidate), nil)
			if d < bestDist {
				best, bestDist = candidate, d
			}
		}
	}
	return best
}

// ForExtension finds the language handling ext. The leading dot is optional.
func (r *Registry) ForExtension(ext string) (ScriptLanguage, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return nil, unknownLanguage("empty extension")
	}
	for _, reg := range r.registrations() {
		lang := r.instance(reg)
		if containsFold(lang.Extensions(), ext) {
			return lang, nil
		}
	}
	return nil, unknownLanguage("no language for extension %q", ext)
}

// ForFile finds the language for path by its extension.
func (r *Registry) ForFile(path string) (ScriptLanguage, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, unknownLanguage("%s has no extension", path)
	}
	return r.ForExtension(ext)
}

// Languages returns every registered language, sorted by registered name.
func (r *Registry) Languages() []ScriptLanguage {
	regs := r.registrations()
	out := make([]ScriptLanguage, len(regs))
	for i, reg := range regs {
		out[i] = r.instance(reg)
	}
	return out
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(item string) bool { return strings.EqualFold(item, s) })
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry behind the package-level functions.
func DefaultRegistry() *Registry { return defaultRegistry }

func Register(name string, factory Factory) { defaultRegistry.Register(name, factory) }

func Lookup(name string) (ScriptLanguage, error) { return defaultRegistry.Lookup(name) }

func ForExtension(ext string) (ScriptLanguage, error) { return defaultRegistry.ForExtension(ext) }

func ForFile(path string) (ScriptLanguage, error) { return defaultRegistry.ForFile(path) }

func Languages() []ScriptLanguage { return defaultRegistry.Languages() }

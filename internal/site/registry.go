package site

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"sync"
)

// Factory creates an Extractor.
type Factory func() (Extractor, error)

// Registry maps extractor names to factories and hosts to extractor names.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	hosts     map[string]string
}

// NewRegistry returns a registry with the built-in extractors registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		hosts:     make(map[string]string),
	}
	r.Register(AO3Name, func() (Extractor, error) { return NewAO3(), nil }, ao3Hosts...)
	return r
}

// Register adds or replaces a factory and associates it with hosts.
func (r *Registry) Register(name string, factory Factory, hosts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
	for _, h := range hosts {
		r.hosts[hostKey(h)] = name
	}
}

// RegisterSelectors registers a selector extractor under name.
// The selectors are compiled immediately so configuration errors surface
// before a crawl starts.
func (r *Registry) RegisterSelectors(name string, sel Selectors, hosts ...string) error {
	if _, err := NewSelector(name, sel); err != nil {
		return err
	}
	r.Register(name, func() (Extractor, error) { return NewSelector(name, sel) }, hosts...)
	return nil
}

// New creates the extractor registered as name.
func (r *Registry) New(name string) (Extractor, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, name)
	}
	return factory()
}

// Detect returns the extractor name associated with host. The port, if any,
// is ignored.
func (r *Registry) Detect(host string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.hosts[hostKey(host)]
	return name, ok
}

// Names returns the registered extractor names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// hostKey lowercases host and drops its port.
func hostKey(host string) string {
	host = strings.ToLower(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

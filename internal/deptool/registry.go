package deptool

import (
	"fmt"
	"sort"
	"sync"
)

// ErrScannerNotFound is returned when a requested scanner is not registered.
var ErrScannerNotFound = fmt.Errorf("scanner not found")

// ErrManagerNotFound is returned when a requested manager is not registered.
var ErrManagerNotFound = fmt.Errorf("manager not found")

// ErrNoScannersAvailable is returned when no registered scanner can run.
var ErrNoScannersAvailable = fmt.Errorf("no scanners available")

// ErrNoManagersAvailable is returned when no registered manager can run.
var ErrNoManagersAvailable = fmt.Errorf("no managers available")

// Registry manages registered scanners and managers.
type Registry struct {
	mu       sync.RWMutex
	scanners map[string]Scanner
	managers map[string]Manager
}

// DefaultRegistry is the process-wide registry. Tool subpackages
// register themselves into it from their init functions; blank-import
// internal/deps to pull in all of them.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scanners: make(map[string]Scanner),
		managers: make(map[string]Manager),
	}
}

// RegisterScanner adds a scanner. A scanner with the same name is replaced.
func (r *Registry) RegisterScanner(s Scanner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanners[s.Name()] = s
}

// RegisterManager adds a manager. A manager with the same name is replaced.
func (r *Registry) RegisterManager(m Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[m.Name()] = m
}

// Scanner retrieves a scanner by name.
func (r *Registry) Scanner(name string) (Scanner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scanners[name]
	return s, ok
}

// Manager retrieves a manager by name.
func (r *Registry) Manager(name string) (Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.managers[name]
	return m, ok
}

// Scanners returns all registered scanners, sorted by name.
func (r *Registry) Scanners() []Scanner {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scanners := make([]Scanner, 0, len(r.scanners))
	for _, s := range r.scanners {
		scanners = append(scanners, s)
	}
	sort.Slice(scanners, func(i, j int) bool {
		return scanners[i].Name() < scanners[j].Name()
	})
	return scanners
}

// Managers returns all registered managers, sorted by name.
func (r *Registry) Managers() []Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	managers := make([]Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	sort.Slice(managers, func(i, j int) bool {
		return managers[i].Name() < managers[j].Name()
	})
	return managers
}

// ScannerNames returns the names of all registered scanners, sorted.
func (r *Registry) ScannerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManagerNames returns the names of all registered managers, sorted.
func (r *Registry) ManagerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.managers))
	for name := range r.managers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectScanner returns the named scanner if it is registered and
// available. With an empty name it falls back to the single available
// scanner.
func (r *Registry) SelectScanner(name string) (Scanner, error) {
	if name != "" {
		s, ok := r.Scanner(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrScannerNotFound, name)
		}
		if !s.IsAvailable() {
			return nil, fmt.Errorf("scanner %q is not available", name)
		}
		return s, nil
	}

	var available []Scanner
	for _, s := range r.Scanners() {
		if s.IsAvailable() {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoScannersAvailable
	}
	return available[0], nil
}

// SelectManager returns the named manager if it is registered and
// available. With an empty name it falls back to the single available
// manager.
func (r *Registry) SelectManager(name string) (Manager, error) {
	if name != "" {
		m, ok := r.Manager(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrManagerNotFound, name)
		}
		if !m.IsAvailable() {
			return nil, fmt.Errorf("manager %q is not available", name)
		}
		return m, nil
	}

	var available []Manager
	for _, m := range r.Managers() {
		if m.IsAvailable() {
			available = append(available, m)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoManagersAvailable
	}
	return available[0], nil
}

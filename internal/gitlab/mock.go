package gitlab

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Client = (*Mock)(nil)

// Mock is a configurable mock for the Client interface.
type Mock struct {
	mu sync.RWMutex

	version *VersionInfo
	project *Project

	// Calls records method invocations in order, e.g. "Version", "DeleteProject(42)".
	calls []string

	// Error overrides: method name -> error
	errors map[string]error
}

// NewMock creates a new configurable mock.
func NewMock() *Mock {
	return &Mock{errors: make(map[string]error)}
}

// WithVersion sets the version info returned by Version.
func (m *Mock) WithVersion(info *VersionInfo) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = info
	return m
}

// WithProject sets the project returned by CreateProject.
func (m *Mock) WithProject(proj *Project) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.project = proj
	return m
}

// WithError makes the named method return err.
func (m *Mock) WithError(method string, err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[method] = err
	return m
}

// Calls returns the recorded method invocations in order.
func (m *Mock) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *Mock) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *Mock) Version(_ context.Context, _ string) (*VersionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Version")
	if err := m.errors["Version"]; err != nil {
		return nil, err
	}
	if m.version == nil {
		return &VersionInfo{Version: "18.0.1", Revision: "abc123"}, nil
	}
	return m.version, nil
}

func (m *Mock) CreateProject(_ context.Context, _ string, name string) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateProject(" + name + ")")
	if err := m.errors["CreateProject"]; err != nil {
		return nil, err
	}
	if m.project == nil {
		return &Project{ID: 1, Name: name, Visibility: "private"}, nil
	}
	return m.project, nil
}

func (m *Mock) DeleteProject(_ context.Context, _ string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteProject")
	return m.errors["DeleteProject"]
}

// Package pipeline defines the value model shared by the transpiler and the
// local runner: workflow parameters, storage mount points, transputs
// (input/output bundles) and the file wrappers used when a script executes
// outside the orchestrator.
package pipeline

import "fmt"

// Pair is one workflow parameter at construction time.
type Pair struct {
	Name  string
	Value string
}

// WorkflowParams is the immutable, insertion-ordered set of workflow-level
// parameters declared once per pipeline script. It exposes no mutators;
// every step sees the same values.
type WorkflowParams struct {
	names  []string
	values map[string]string
}

// NewWorkflowParams builds an immutable parameter set from ordered pairs.
// A duplicate name is an error rather than a silent overwrite.
func NewWorkflowParams(pairs ...Pair) (*WorkflowParams, error) {
	p := &WorkflowParams{
		names:  make([]string, 0, len(pairs)),
		values: make(map[string]string, len(pairs)),
	}
	for _, pair := range pairs {
		if _, exists := p.values[pair.Name]; exists {
			return nil, fmt.Errorf("duplicate workflow parameter %q", pair.Name)
		}
		p.names = append(p.names, pair.Name)
		p.values[pair.Name] = pair.Value
	}
	return p, nil
}

// Get returns the value bound to name.
func (p *WorkflowParams) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Has reports whether name is declared.
func (p *WorkflowParams) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Names returns the parameter names in declaration order.
func (p *WorkflowParams) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Len returns the number of declared parameters.
func (p *WorkflowParams) Len() int {
	return len(p.names)
}

// MountPoint maps one storage root between the local filesystem (used when a
// script runs directly) and a remote object-storage location (used by the
// orchestrator).
type MountPoint struct {
	Local  string
	Remote string
}

// MountEntry is one named mount point at construction time.
type MountEntry struct {
	Name  string
	Point MountPoint
}

// MountPoints is the immutable mapping of logical root name to MountPoint.
type MountPoints struct {
	names  []string
	points map[string]MountPoint
}

// NewMountPoints builds an immutable mount-point table from ordered entries.
func NewMountPoints(entries ...MountEntry) (*MountPoints, error) {
	m := &MountPoints{
		names:  make([]string, 0, len(entries)),
		points: make(map[string]MountPoint, len(entries)),
	}
	for _, e := range entries {
		if _, exists := m.points[e.Name]; exists {
			return nil, fmt.Errorf("duplicate mount point %q", e.Name)
		}
		m.names = append(m.names, e.Name)
		m.points[e.Name] = e.Point
	}
	return m, nil
}

// Get returns the mount point for the given logical root name.
func (m *MountPoints) Get(name string) (MountPoint, bool) {
	p, ok := m.points[name]
	return p, ok
}

// Names returns the root names in declaration order.
func (m *MountPoints) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

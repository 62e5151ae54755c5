package pipeline

// Origin identifies the step that first produced an output entry. It is
// attached exactly once; re-producing an already-originated entry is a
// lineage conflict the compiler rejects.
type Origin struct {
	Step string
	Name string
}

// Parameter is one named string value in a transput, with its producing
// step attached once known.
type Parameter struct {
	Value  string
	Origin *Origin
}

// Artifact is a file-like value flowing between steps. The two variants are
// PermanentArtifact (durable storage coordinates) and TemporaryArtifact
// (ephemeral shared storage, producer-tracked).
type Artifact interface {
	isArtifact()
}

// PermanentArtifact references durable object storage by root (the resolved
// remote location of a mount point) and path within it.
type PermanentArtifact struct {
	Root string
	Path string
}

func (PermanentArtifact) isArtifact() {}

// TemporaryArtifact lives in ephemeral shared storage under the given path.
// Origin is set when a step first produces it.
type TemporaryArtifact struct {
	Path   string
	Origin *Origin
}

func (TemporaryArtifact) isArtifact() {}

// TransputParameter is a named Parameter inside a Transput, kept in
// declaration order.
type TransputParameter struct {
	Name   string
	Value  string
	Origin *Origin
}

// TransputArtifact is a named Artifact inside a Transput, kept in
// declaration order.
type TransputArtifact struct {
	Name     string
	Artifact Artifact
}

// Transput is the bundle abstraction shared by step inputs and outputs: an
// ordered set of named parameters plus an ordered set of named artifacts.
// A Transput carrying neither is invalid.
type Transput struct {
	Parameters []TransputParameter
	Artifacts  []TransputArtifact
}

// Empty reports whether the transput carries no parameters and no artifacts.
func (t *Transput) Empty() bool {
	return len(t.Parameters) == 0 && len(t.Artifacts) == 0
}

// Parameter returns the named parameter entry, or nil.
func (t *Transput) Parameter(name string) *TransputParameter {
	for i := range t.Parameters {
		if t.Parameters[i].Name == name {
			return &t.Parameters[i]
		}
	}
	return nil
}

// Artifact returns the named artifact, or nil.
func (t *Transput) Artifact(name string) Artifact {
	for i := range t.Artifacts {
		if t.Artifacts[i].Name == name {
			return t.Artifacts[i].Artifact
		}
	}
	return nil
}

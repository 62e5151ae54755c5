package workflow

import (
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var lineageLog = logger.New("workflow:lineage")

// stampOutputs records the producing step on every entry of an output
// bundle that is being threaded through the workflow by reference. Each
// entry gets its Origin exactly once; a second producer is a fatal lineage
// conflict regardless of which step it is.
//
// Entries of a freshly constructed Output(...) literal are never stamped:
// nothing downstream can refer to them, so they need no producer.
func stampOutputs(t *pipeline.Transput, step string) error {
	for i := range t.Parameters {
		p := &t.Parameters[i]
		if p.Origin != nil {
			return &LineageConflictError{Step: step, Name: p.Name, PriorStep: p.Origin.Step}
		}
		p.Origin = &pipeline.Origin{Step: step, Name: p.Name}
		lineageLog.Printf("Stamped parameter %q with origin %s", p.Name, step)
	}

	for i := range t.Artifacts {
		entry := &t.Artifacts[i]
		tmp, ok := entry.Artifact.(pipeline.TemporaryArtifact)
		if !ok {
			// Permanent artifacts carry durable coordinates; downstream
			// steps reference those directly rather than the producer.
			continue
		}
		if tmp.Origin != nil {
			return &LineageConflictError{Step: step, Name: entry.Name, PriorStep: tmp.Origin.Step}
		}
		tmp.Origin = &pipeline.Origin{Step: step, Name: entry.Name}
		entry.Artifact = tmp
		lineageLog.Printf("Stamped artifact %q with origin %s", entry.Name, step)
	}

	return nil
}

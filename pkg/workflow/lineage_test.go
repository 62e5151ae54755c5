package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowforge/flowc/pkg/pipeline"
)

func TestStampOutputs(t *testing.T) {
	bundle := &pipeline.Transput{
		Parameters: []pipeline.TransputParameter{{Name: "out-value"}},
		Artifacts: []pipeline.TransputArtifact{
			{Name: "word-file", Artifact: pipeline.TemporaryArtifact{Path: "word.txt"}},
			{Name: "txt-out", Artifact: pipeline.PermanentArtifact{Root: "s3://bucket", Path: "out"}},
		},
	}

	require.NoError(t, stampOutputs(bundle, "get-nth-word"))

	require.NotNil(t, bundle.Parameters[0].Origin)
	assert.Equal(t, "get-nth-word", bundle.Parameters[0].Origin.Step)
	assert.Equal(t, "out-value", bundle.Parameters[0].Origin.Name)

	tmp := bundle.Artifacts[0].Artifact.(pipeline.TemporaryArtifact)
	require.NotNil(t, tmp.Origin)
	assert.Equal(t, "get-nth-word", tmp.Origin.Step)
	assert.Equal(t, "word-file", tmp.Origin.Name)

	// Permanent artifacts are addressed by storage coordinates, not by
	// producer; they carry no origin.
	perm := bundle.Artifacts[1].Artifact.(pipeline.PermanentArtifact)
	assert.Equal(t, "s3://bucket", perm.Root)
}

func TestStampOutputsSecondProducerConflicts(t *testing.T) {
	bundle := &pipeline.Transput{
		Parameters: []pipeline.TransputParameter{{Name: "out-value"}},
	}

	require.NoError(t, stampOutputs(bundle, "first"))

	err := stampOutputs(bundle, "second")
	var conflict *LineageConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "second", conflict.Step)
	assert.Equal(t, "first", conflict.PriorStep)
	assert.Equal(t, "out-value", conflict.Name)
}

func TestStampOutputsTemporaryArtifactConflicts(t *testing.T) {
	bundle := &pipeline.Transput{
		Artifacts: []pipeline.TransputArtifact{
			{Name: "word-file", Artifact: pipeline.TemporaryArtifact{Path: "word.txt"}},
		},
	}

	require.NoError(t, stampOutputs(bundle, "first"))

	err := stampOutputs(bundle, "second")
	var conflict *LineageConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "word-file", conflict.Name)
}

func TestStampOutputsPermanentOnlyBundleNeverConflicts(t *testing.T) {
	// A bundle carrying only permanent artifacts can be attached to every
	// branch of a conditional: whichever branch runs uploads to the same
	// coordinates.
	bundle := &pipeline.Transput{
		Artifacts: []pipeline.TransputArtifact{
			{Name: "txt-out", Artifact: pipeline.PermanentArtifact{Root: "s3://bucket", Path: "out"}},
		},
	}

	require.NoError(t, stampOutputs(bundle, "add-alpha"))
	require.NoError(t, stampOutputs(bundle, "add-beta"))
}

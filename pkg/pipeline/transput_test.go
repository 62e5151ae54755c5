package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransputEmpty(t *testing.T) {
	var empty Transput
	assert.True(t, empty.Empty())

	withParam := Transput{Parameters: []TransputParameter{{Name: "x", Value: "1"}}}
	assert.False(t, withParam.Empty())

	withArtifact := Transput{Artifacts: []TransputArtifact{{Name: "f", Artifact: TemporaryArtifact{Path: "f.txt"}}}}
	assert.False(t, withArtifact.Empty())
}

func TestTransputLookup(t *testing.T) {
	bundle := Transput{
		Parameters: []TransputParameter{
			{Name: "x", Value: "1"},
			{Name: "y", Value: "2"},
		},
		Artifacts: []TransputArtifact{
			{Name: "f", Artifact: PermanentArtifact{Root: "s3://bucket", Path: "out"}},
		},
	}

	param := bundle.Parameter("y")
	assert.NotNil(t, param)
	assert.Equal(t, "2", param.Value)
	assert.Nil(t, bundle.Parameter("z"))

	artifact := bundle.Artifact("f")
	assert.Equal(t, PermanentArtifact{Root: "s3://bucket", Path: "out"}, artifact)
	assert.Nil(t, bundle.Artifact("g"))
}

func TestTransputParameterReturnsStoredEntry(t *testing.T) {
	bundle := Transput{Parameters: []TransputParameter{{Name: "x", Value: "1"}}}

	// The returned pointer aliases the stored entry so a stamped Origin is
	// visible on later lookups.
	bundle.Parameter("x").Origin = &Origin{Step: "first", Name: "x"}
	assert.Equal(t, "first", bundle.Parameter("x").Origin.Step)
}

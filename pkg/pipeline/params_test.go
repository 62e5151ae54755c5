package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowParamsOrder(t *testing.T) {
	params, err := NewWorkflowParams(
		Pair{Name: "s3-bucket", Value: "pq-dataxfer-tmp"},
		Pair{Name: "input-val", Value: "1"},
		Pair{Name: "output-path", Value: "testing/output"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"s3-bucket", "input-val", "output-path"}, params.Names())
	assert.Equal(t, 3, params.Len())

	value, ok := params.Get("input-val")
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	assert.True(t, params.Has("s3-bucket"))
	assert.False(t, params.Has("missing"))
}

func TestWorkflowParamsDuplicate(t *testing.T) {
	_, err := NewWorkflowParams(
		Pair{Name: "x", Value: "1"},
		Pair{Name: "x", Value: "2"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate workflow parameter "x"`)
}

func TestWorkflowParamsNamesIsACopy(t *testing.T) {
	params, err := NewWorkflowParams(Pair{Name: "a", Value: "1"}, Pair{Name: "b", Value: "2"})
	require.NoError(t, err)

	names := params.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, params.Names())
}

func TestMountPoints(t *testing.T) {
	mounts, err := NewMountPoints(
		MountEntry{Name: "root", Point: MountPoint{Local: "/data", Remote: "s3://bucket"}},
		MountEntry{Name: "scratch", Point: MountPoint{Local: "/tmp/scratch", Remote: "s3://bucket/scratch"}},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"root", "scratch"}, mounts.Names())

	point, ok := mounts.Get("root")
	assert.True(t, ok)
	assert.Equal(t, "s3://bucket", point.Remote)

	_, ok = mounts.Get("missing")
	assert.False(t, ok)
}

func TestMountPointsDuplicate(t *testing.T) {
	_, err := NewMountPoints(
		MountEntry{Name: "root", Point: MountPoint{Local: "/a"}},
		MountEntry{Name: "root", Point: MountPoint{Local: "/b"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate mount point "root"`)
}

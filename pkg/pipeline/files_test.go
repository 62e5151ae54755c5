package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileInputOpenRejectsWriting(t *testing.T) {
	in := FileInput{Root: MountPoint{Local: t.TempDir()}, Path: "data", Name: "in.txt"}

	_, err := in.Open("w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only read from a FileInput")
}

func TestFileInputRoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "in.txt"), []byte("hello"), 0o644))

	in := FileInput{Root: MountPoint{Local: root}, Path: "data", Name: "in.txt"}
	assert.Equal(t, filepath.Join(root, "data", "in.txt"), in.PathString())

	f, err := in.Open("r")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
}

func TestFileOutputOpenModeAndNaming(t *testing.T) {
	root := t.TempDir()
	out := FileOutput{Root: MountPoint{Local: root}, Path: "results"}

	_, err := out.Open("result.txt", "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only write to a FileOutput")

	_, err = out.Open("", "w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file name")

	named := FileOutput{Root: MountPoint{Local: root}, Path: "results", Name: "fixed.txt"}
	_, err = named.Open("other.txt", "w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has file name")
}

func TestFileOutputOpenCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	out := FileOutput{Root: MountPoint{Local: root}, Path: "nested/results"}

	f, err := out.Open("result.txt", "w")
	require.NoError(t, err)
	_, err = f.WriteString("done")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(root, "nested", "results", "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, "done", string(data))
}

func TestFileOutputPathStringNeedsName(t *testing.T) {
	out := FileOutput{Root: MountPoint{Local: "/data"}, Path: "results"}
	_, err := out.PathString()
	require.Error(t, err)

	out.Name = "result.txt"
	path, err := out.PathString()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "results", "result.txt"), path)
}

func TestTmpFileReadBeforeWrite(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	tmp := TmpFile{Name: "never-written.txt"}
	_, err := tmp.Open("r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before it has been written")
}

func TestTmpFileWriteThenRead(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	tmp := TmpFile{Name: "word.txt"}
	f, err := tmp.Open("w")
	require.NoError(t, err)
	_, err = f.WriteString("alpha")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := tmp.Open("r")
	require.NoError(t, err)
	defer r.Close()

	data, err := os.ReadFile(tmp.PathString())
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	// Scratch files live in a per-day directory.
	assert.Contains(t, tmp.PathString(), time.Now().Format("2006-01-02"))
}

func TestTmpFileUnsupportedMode(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	tmp := TmpFile{Name: "word.txt"}
	_, err := tmp.Open("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported file mode "a"`)
}

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileInput wraps a readable file under a mount point so a script can run
// locally; the transpiler turns the same construct into an input artifact.
type FileInput struct {
	Root MountPoint
	Path string
	Name string
}

// Open opens the file for reading. Any mode other than "r" is rejected:
// inputs are read-only by definition.
func (f FileInput) Open(mode string) (*os.File, error) {
	if mode != "r" {
		return nil, fmt.Errorf("can only read from a FileInput (mode %q); did you mean a FileOutput or TmpFile?", mode)
	}
	return os.Open(f.PathString())
}

// PathString returns the local filesystem path, used when filling literal
// templates.
func (f FileInput) PathString() string {
	return filepath.Join(f.Root.Local, f.Path, f.Name)
}

// FileOutput wraps a writable file under a mount point. Name may be left
// empty at construction and supplied to Open instead.
type FileOutput struct {
	Root MountPoint
	Path string
	Name string
}

// Open creates the output file for writing, creating parent directories as
// needed. Exactly one of the construction-time Name and the fileName
// argument must be set.
func (f FileOutput) Open(fileName, mode string) (*os.File, error) {
	if mode != "w" {
		return nil, fmt.Errorf("can only write to a FileOutput (mode %q); did you mean a FileInput or TmpFile?", mode)
	}

	name := f.Name
	switch {
	case name == "" && fileName == "":
		return nil, fmt.Errorf("FileOutput has no file name; construct it with one or pass one to Open")
	case name != "" && fileName != "":
		return nil, fmt.Errorf("FileOutput already has file name %q; refusing to overwrite it with %q", name, fileName)
	case name == "":
		name = fileName
	}

	dir := filepath.Join(f.Root.Local, f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(dir, name))
}

// PathString returns the local filesystem path. The file name must have
// been set at construction time.
func (f FileOutput) PathString() (string, error) {
	if f.Name == "" {
		return "", fmt.Errorf("FileOutput needs a name to have a path")
	}
	return filepath.Join(f.Root.Local, f.Path, f.Name), nil
}

// TmpFile is the local stand-in for a temporary artifact: a file in a
// per-day scratch directory used to hand data between steps when running
// outside the orchestrator.
type TmpFile struct {
	Name string
}

// TmpDir returns the date-scoped scratch directory used by TmpFile,
// creating it if needed.
func TmpDir() (string, error) {
	dir := filepath.Join(os.TempDir(), time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Open opens the temporary file. Mode "w" truncates or creates; mode "r"
// requires the file to exist already (a read-before-write is almost always
// a step-ordering bug in the script).
func (f TmpFile) Open(mode string) (*os.File, error) {
	dir, err := TmpDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, f.Name)

	switch mode {
	case "w":
		return os.Create(path)
	case "r":
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("no file at %s; are you reading from TmpFile %q before it has been written?", path, f.Name)
		}
		return os.Open(path)
	default:
		return nil, fmt.Errorf("unsupported file mode %q", mode)
	}
}

// PathString returns the local path of the temporary file.
func (f TmpFile) PathString() string {
	dir := filepath.Join(os.TempDir(), time.Now().Format("2006-01-02"))
	return filepath.Join(dir, f.Name)
}

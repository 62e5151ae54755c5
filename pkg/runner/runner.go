// Package runner executes pipeline scripts locally in an embedded
// JavaScript VM. The same script that the compiler transpiles into a
// manifest runs here against the local filesystem, with mount points
// resolved to their local directories.
package runner

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/flowforge/flowc/pkg/console"
	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var runnerLog = logger.New("runner:runner")

//go:embed prelude.js
var prelude string

// Runner evaluates a pipeline script in a fresh VM per run.
type Runner struct {
	verbose bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithVerbose enables progress messages on stderr.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.verbose = verbose
	}
}

// New creates a Runner with the given options applied.
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript evaluates the script at scriptPath: the prelude supplies the
// pipeline surface (WorkflowParams, MountPoints, step, entrypoint, the
// file constructors), the script registers its driver, and the driver is
// invoked with the declared mounts and parameters.
func (r *Runner) RunScript(scriptPath string) error {
	src, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	vm := goja.New()
	if err := registerHostFunctions(vm); err != nil {
		return err
	}
	if _, err := vm.RunString(prelude); err != nil {
		return fmt.Errorf("failed to initialize script runtime: %w", err)
	}

	runnerLog.Printf("Running %s", scriptPath)
	if _, err := vm.RunScript(scriptPath, string(src)); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	if _, err := vm.RunString("__run()"); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}

	if r.verbose {
		fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf("Ran %s locally", scriptPath)))
	}
	return nil
}

// registerHostFunctions wires the prelude's file operations to the local
// I/O wrappers. Mode and naming rules are enforced on the Go side so the
// local run fails the same way a bad script fails to transpile.
func registerHostFunctions(vm *goja.Runtime) error {
	hostFns := map[string]any{
		"__openInput": func(local, path, name, mode string) string {
			in := pipeline.FileInput{Root: pipeline.MountPoint{Local: local}, Path: path, Name: name}
			f, err := in.Open(mode)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			f.Close()
			return in.PathString()
		},
		"__openOutput": func(local, path, name, fileName, mode string) string {
			out := pipeline.FileOutput{Root: pipeline.MountPoint{Local: local}, Path: path, Name: name}
			f, err := out.Open(fileName, mode)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			defer f.Close()
			return f.Name()
		},
		"__openTmp": func(name, mode string) string {
			tmp := pipeline.TmpFile{Name: name}
			f, err := tmp.Open(mode)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			f.Close()
			return tmp.PathString()
		},
		"__tmpPath": func(name string) string {
			return pipeline.TmpFile{Name: name}.PathString()
		},
		"__readFile": func(path string) string {
			f, err := os.Open(path)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			return string(data)
		},
		"__appendFile": func(path, data string) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				panic(vm.NewGoError(err))
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				panic(vm.NewGoError(err))
			}
			defer f.Close()
			if _, err := f.WriteString(data); err != nil {
				panic(vm.NewGoError(err))
			}
		},
	}

	for name, fn := range hostFns {
		if err := vm.Set(name, fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", name, err)
		}
	}
	return nil
}

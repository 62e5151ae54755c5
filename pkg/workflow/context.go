package workflow

import "github.com/flowforge/flowc/pkg/pipeline"

// Context is the resolver's working environment while walking the driver
// routine: the names the driver binds the configuration objects to, the
// configuration itself, and every transput bound so far. It grows
// monotonically in source order and is never rolled back. Each compilation
// gets its own Context; nothing is shared across compilations.
type Context struct {
	// ParamsName and MountsName are the driver's parameter names for the
	// workflow parameters and mount-point table.
	ParamsName string
	MountsName string

	Params *pipeline.WorkflowParams
	Mounts *pipeline.MountPoints

	// Inputs and Outputs map driver-bound names to resolved transputs.
	// Values are pointers so lineage stamping is visible everywhere the
	// bundle is referenced.
	Inputs  map[string]*pipeline.Transput
	Outputs map[string]*pipeline.Transput
}

func newContext(paramsName, mountsName string, params *pipeline.WorkflowParams, mounts *pipeline.MountPoints) *Context {
	return &Context{
		ParamsName: paramsName,
		MountsName: mountsName,
		Params:     params,
		Mounts:     mounts,
		Inputs:     make(map[string]*pipeline.Transput),
		Outputs:    make(map[string]*pipeline.Transput),
	}
}

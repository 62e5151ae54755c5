package workflow

import (
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var stepLog = logger.New("workflow:step")

// WorkflowStep is one step call site, fully resolved. All derived fields
// are computed at construction; the value is read-only afterwards.
type WorkflowStep struct {
	// Name is the manifest step name (hyphenated form of the script's
	// step binding).
	Name string
	// FuncName is the binding name in the script.
	FuncName string
	// TemplateName is the name of the step's container template.
	TemplateName string

	Image   string
	Inputs  *pipeline.Transput
	Outputs *pipeline.Transput

	// Body is the step function literal; InputArg and OutputArg are its
	// declared parameter names, rewritten to placeholder scopes.
	Body      *ast.FunctionLiteral
	InputArg  string
	OutputArg string

	// When is the guard condition for conditional branches, empty
	// otherwise.
	When string
}

// makeWorkflowStep resolves one step call into an immutable WorkflowStep:
// looks up the step definition, resolves both transputs, and stamps output
// lineage when the outputs are threaded through by reference.
func (r *resolver) makeWorkflowStep(model *scriptModel, call *ast.CallExpression, when string) (*WorkflowStep, error) {
	line := lineOf(r.src, call.Idx0())

	funcName, ok := calleeName(call)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "step call",
			Detail:    "step calls must invoke a named step",
			Line:      line,
		}
	}
	def, ok := model.steps[funcName]
	if !ok {
		return nil, &UnresolvedReferenceError{Object: funcName, Key: "step", Line: line}
	}
	if len(call.ArgumentList) != 2 {
		return nil, &UnsupportedConstructError{
			Construct: "step call",
			Detail:    fmt.Sprintf("%s takes exactly an input and an output bundle", funcName),
			Line:      line,
		}
	}

	name := hyphenate(funcName)

	inputs, err := r.stepInputs(call.ArgumentList[0], name)
	if err != nil {
		return nil, err
	}
	outputs, err := r.stepOutputs(call.ArgumentList[1], name)
	if err != nil {
		return nil, err
	}

	argNames, ok := parameterNames(def.fn)
	if !ok || len(argNames) != 2 {
		return nil, &UnsupportedConstructError{
			Construct: "step function",
			Detail:    fmt.Sprintf("%s must declare exactly (input, output) parameters", funcName),
			Line:      lineOf(r.src, def.fn.Idx0()),
		}
	}

	stepLog.Printf("Built step %q (template %s, when=%q)", name, templateName(name), when)
	return &WorkflowStep{
		Name:         name,
		FuncName:     funcName,
		TemplateName: templateName(name),
		Image:        def.image,
		Inputs:       inputs,
		Outputs:      outputs,
		Body:         def.fn,
		InputArg:     argNames[0],
		OutputArg:    argNames[1],
		When:         when,
	}, nil
}

// stepInputs resolves the first step argument: an inline Input(...) call
// or the name of a previously bound input bundle.
func (r *resolver) stepInputs(arg ast.Expression, stepName string) (*pipeline.Transput, error) {
	line := lineOf(r.src, arg.Idx0())

	if call, ok := arg.(*ast.CallExpression); ok {
		callee, _ := calleeName(call)
		if callee != "Input" {
			return nil, &UnsupportedConstructError{
				Construct: "step input",
				Detail:    fmt.Sprintf("first argument to %s must be an Input bundle", stepName),
				Line:      line,
			}
		}
		return r.resolveTransput(call, fmt.Sprintf("input of %s", stepName))
	}

	if name, ok := identName(arg); ok {
		if t, bound := r.ctx.Inputs[name]; bound {
			return t, nil
		}
		return nil, &UnresolvedReferenceError{Object: name, Key: "inputs", Line: line}
	}

	return nil, &UnsupportedConstructError{
		Construct: "step input",
		Detail:    fmt.Sprintf("first argument to %s must be an Input bundle", stepName),
		Line:      line,
	}
}

// stepOutputs resolves the second step argument. Referenced bundles get
// their lineage stamped with this step as producer; inline Output(...)
// literals are fresh and origin-less.
func (r *resolver) stepOutputs(arg ast.Expression, stepName string) (*pipeline.Transput, error) {
	line := lineOf(r.src, arg.Idx0())

	if call, ok := arg.(*ast.CallExpression); ok {
		callee, _ := calleeName(call)
		if callee != "Output" {
			return nil, &UnsupportedConstructError{
				Construct: "step output",
				Detail:    fmt.Sprintf("second argument to %s must be an Output bundle", stepName),
				Line:      line,
			}
		}
		return r.resolveTransput(call, fmt.Sprintf("output of %s", stepName))
	}

	if name, ok := identName(arg); ok {
		t, bound := r.ctx.Outputs[name]
		if !bound {
			return nil, &UnresolvedReferenceError{Object: name, Key: "outputs", Line: line}
		}
		if err := stampOutputs(t, stepName); err != nil {
			return nil, err
		}
		return t, nil
	}

	return nil, &UnsupportedConstructError{
		Construct: "step output",
		Detail:    fmt.Sprintf("second argument to %s must be an Output bundle", stepName),
		Line:      line,
	}
}

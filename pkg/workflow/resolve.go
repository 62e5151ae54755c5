package workflow

import (
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var resolveLog = logger.New("workflow:resolve")

// resolver turns the driver's symbolic references into literals,
// placeholder tokens, or previously resolved parameters/artifacts, using
// the monotonically growing Context.
type resolver struct {
	src string
	ctx *Context
}

// resolveSubscript handles `object[key]` where object is the workflow
// parameters (emits a workflow placeholder) or the mount-point table
// (emits the remote location literal). Anything else is an unresolved
// reference.
func (r *resolver) resolveSubscript(sub subscript) (string, error) {
	line := lineOf(r.src, sub.node.Idx0())

	switch sub.object {
	case r.ctx.ParamsName:
		if !r.ctx.Params.Has(sub.key) {
			return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: line}
		}
		return fmt.Sprintf("{{workflow.parameters.%s}}", sub.key), nil
	case r.ctx.MountsName:
		if r.ctx.Mounts == nil {
			return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: line}
		}
		point, ok := r.ctx.Mounts.Get(sub.key)
		if !ok {
			return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: line}
		}
		return point.Remote, nil
	default:
		return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: line}
	}
}

// resolveValue handles the value grammar shared by parameters and artifact
// coordinates: a string literal or a resolvable subscript.
func (r *resolver) resolveValue(e ast.Expression) (string, error) {
	if s, ok := stringValue(e); ok {
		return s, nil
	}
	if sub, ok := asSubscript(e); ok {
		return r.resolveSubscript(sub)
	}
	return "", &UnsupportedConstructError{
		Construct: "value expression",
		Detail:    "expected a string literal or a parameter/mount lookup",
		Line:      lineOf(r.src, e.Idx0()),
	}
}

// resolveTransput resolves an inline Input(...) or Output(...) call into a
// fresh Transput. context names the call for diagnostics ("input of
// add-alpha").
func (r *resolver) resolveTransput(call *ast.CallExpression, context string) (*pipeline.Transput, error) {
	obj, err := singleObjectArgument(r.src, call, context)
	if err != nil {
		return nil, err
	}
	entries, err := objectEntries(r.src, obj)
	if err != nil {
		return nil, err
	}

	t := &pipeline.Transput{}
	for _, e := range entries {
		switch e.key {
		case "parameters":
			params, err := r.resolveParameters(e.value)
			if err != nil {
				return nil, err
			}
			t.Parameters = params
		case "artifacts":
			artifacts, err := r.resolveArtifacts(e.value)
			if err != nil {
				return nil, err
			}
			t.Artifacts = artifacts
		default:
			return nil, &UnsupportedConstructError{
				Construct: "transput field",
				Detail:    fmt.Sprintf("unknown field %q; expected parameters or artifacts", e.key),
				Line:      e.line,
			}
		}
	}

	if t.Empty() {
		return nil, &EmptyBundleError{Context: context, Line: lineOf(r.src, call.Idx0())}
	}
	resolveLog.Printf("Resolved %s: %d parameters, %d artifacts", context, len(t.Parameters), len(t.Artifacts))
	return t, nil
}

func (r *resolver) resolveParameters(e ast.Expression) ([]pipeline.TransputParameter, error) {
	obj, ok := e.(*ast.ObjectLiteral)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "transput parameters",
			Detail:    "must be an object literal",
			Line:      lineOf(r.src, e.Idx0()),
		}
	}
	entries, err := objectEntries(r.src, obj)
	if err != nil {
		return nil, err
	}

	params := make([]pipeline.TransputParameter, 0, len(entries))
	for _, entry := range entries {
		param, err := r.resolveParameterValue(entry)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

func (r *resolver) resolveParameterValue(entry propertyEntry) (pipeline.TransputParameter, error) {
	// A null value declares an output parameter whose value the step fills
	// in at run time.
	if isNullLiteral(entry.value) {
		return pipeline.TransputParameter{Name: entry.key}, nil
	}

	if ms, ok := asMemberSubscript(entry.value); ok && ms.member == "parameters" {
		stored, err := r.lookupBoundParameter(ms)
		if err != nil {
			return pipeline.TransputParameter{}, err
		}
		return pipeline.TransputParameter{Name: entry.key, Value: stored.Value, Origin: stored.Origin}, nil
	}

	value, err := r.resolveValue(entry.value)
	if err != nil {
		return pipeline.TransputParameter{}, err
	}
	return pipeline.TransputParameter{Name: entry.key, Value: value}, nil
}

// lookupBoundParameter resolves `prev.parameters["k"]` against a
// previously bound transput, preserving its Origin so downstream manifest
// entries can reference the producing step instead of duplicating the
// value.
func (r *resolver) lookupBoundParameter(ms memberSubscript) (*pipeline.TransputParameter, error) {
	line := lineOf(r.src, ms.node.Idx0())

	bundle := r.lookupBundle(ms.object)
	if bundle == nil {
		return nil, &UnresolvedReferenceError{Object: ms.object, Key: ms.key, Line: line}
	}
	stored := bundle.Parameter(ms.key)
	if stored == nil {
		return nil, &UnresolvedReferenceError{
			Object: ms.object + ".parameters",
			Key:    ms.key,
			Line:   line,
		}
	}
	return stored, nil
}

func (r *resolver) resolveArtifacts(e ast.Expression) ([]pipeline.TransputArtifact, error) {
	obj, ok := e.(*ast.ObjectLiteral)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "transput artifacts",
			Detail:    "must be an object literal",
			Line:      lineOf(r.src, e.Idx0()),
		}
	}
	entries, err := objectEntries(r.src, obj)
	if err != nil {
		return nil, err
	}

	artifacts := make([]pipeline.TransputArtifact, 0, len(entries))
	for _, entry := range entries {
		artifact, err := r.resolveArtifactValue(entry)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, pipeline.TransputArtifact{Name: entry.key, Artifact: artifact})
	}
	return artifacts, nil
}

func (r *resolver) resolveArtifactValue(entry propertyEntry) (pipeline.Artifact, error) {
	if call, ok := entry.value.(*ast.CallExpression); ok {
		return r.resolveArtifactCall(entry.key, call)
	}

	if ms, ok := asMemberSubscript(entry.value); ok && ms.member == "artifacts" {
		line := lineOf(r.src, ms.node.Idx0())
		bundle := r.lookupBundle(ms.object)
		if bundle == nil {
			return nil, &UnresolvedReferenceError{Object: ms.object, Key: ms.key, Line: line}
		}
		stored := bundle.Artifact(ms.key)
		if stored == nil {
			return nil, &UnresolvedReferenceError{
				Object: ms.object + ".artifacts",
				Key:    ms.key,
				Line:   line,
			}
		}
		return stored, nil
	}

	return nil, &UnsupportedConstructError{
		Construct: "artifact value",
		Detail:    fmt.Sprintf("artifact %q must be a FileInput/FileOutput/TmpFile call or a prior transput lookup", entry.key),
		Line:      entry.line,
	}
}

func (r *resolver) resolveArtifactCall(name string, call *ast.CallExpression) (pipeline.Artifact, error) {
	callee, ok := calleeName(call)
	line := lineOf(r.src, call.Idx0())
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "artifact constructor",
			Line:      line,
		}
	}

	switch callee {
	case "TmpFile":
		if len(call.ArgumentList) != 1 {
			return nil, &UnsupportedConstructError{
				Construct: "TmpFile call",
				Detail:    "expected TmpFile(name)",
				Line:      line,
			}
		}
		path, ok := stringValue(call.ArgumentList[0])
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "TmpFile name",
				Detail:    "must be a string literal",
				Line:      line,
			}
		}
		return pipeline.TemporaryArtifact{Path: path}, nil

	case "FileInput", "FileOutput":
		if len(call.ArgumentList) < 2 || len(call.ArgumentList) > 3 {
			return nil, &UnsupportedConstructError{
				Construct: callee + " call",
				Detail:    "expected (root, path) or (root, path, name)",
				Line:      line,
			}
		}
		root, err := r.resolveValue(call.ArgumentList[0])
		if err != nil {
			return nil, err
		}
		path, err := r.resolveValue(call.ArgumentList[1])
		if err != nil {
			return nil, err
		}
		return pipeline.PermanentArtifact{Root: root, Path: path}, nil

	default:
		return nil, &UnsupportedConstructError{
			Construct: "artifact constructor",
			Detail:    fmt.Sprintf("unknown constructor %q for artifact %q", callee, name),
			Line:      line,
		}
	}
}

// lookupBundle finds a previously bound transput by name, checking inputs
// first and then outputs.
func (r *resolver) lookupBundle(name string) *pipeline.Transput {
	if t, ok := r.ctx.Inputs[name]; ok {
		return t
	}
	if t, ok := r.ctx.Outputs[name]; ok {
		return t
	}
	return nil
}

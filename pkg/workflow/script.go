package workflow

import (
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var scriptLog = logger.New("workflow:script")

// stepDef is one `const name = step(image, function (input, output) {...})`
// declaration.
type stepDef struct {
	name  string
	image string
	fn    *ast.FunctionLiteral
}

// scriptModel is everything the compiler learns from the script's top
// level: the configuration declarations, the step definitions, and the
// entrypoint function.
type scriptModel struct {
	params     *pipeline.WorkflowParams
	paramsName string
	mounts     *pipeline.MountPoints
	mountsName string

	steps map[string]*stepDef

	entry     *ast.FunctionLiteral
	entryName string
}

// parseScript walks the program's top-level statements and builds the
// script model. The script is never executed: configuration values are
// recovered by matching the small declaration grammar and resolving it
// statically.
func parseScript(src string, program *ast.Program) (*scriptModel, error) {
	model := &scriptModel{steps: make(map[string]*stepDef)}
	functions := make(map[string]*ast.FunctionLiteral)
	var entrypointName string

	for _, stmt := range program.Body {
		switch s := stmt.(type) {
		case *ast.LexicalDeclaration:
			if err := model.addDeclaration(src, s.List); err != nil {
				return nil, err
			}
		case *ast.VariableStatement:
			if err := model.addDeclaration(src, s.List); err != nil {
				return nil, err
			}
		case *ast.FunctionDeclaration:
			if s.Function.Name != nil {
				functions[s.Function.Name.Name.String()] = s.Function
			}
		case *ast.ExpressionStatement:
			call, ok := s.Expression.(*ast.CallExpression)
			if !ok {
				continue
			}
			name, ok := calleeName(call)
			if !ok || name != "entrypoint" {
				continue
			}
			if entrypointName != "" {
				return nil, &ConfigurationError{
					Message: "multiple entrypoint declarations found; please declare exactly one",
					Hints:   []string{"keep a single entrypoint(...) call for the driver"},
				}
			}
			if len(call.ArgumentList) != 1 {
				return nil, &ConfigurationError{
					Message: "entrypoint(...) takes exactly one function",
				}
			}
			argName, ok := identName(call.ArgumentList[0])
			if !ok {
				return nil, &ConfigurationError{
					Message: "entrypoint(...) must name a top-level function",
				}
			}
			entrypointName = argName
		}
	}

	if model.params == nil {
		return nil, &ConfigurationError{
			Message: "no WorkflowParams declaration found; declare one at the top level",
			Hints:   []string{`declare const params = WorkflowParams({ "name": "value" }) at the top level`},
		}
	}
	if entrypointName == "" {
		return nil, &ConfigurationError{
			Message: "no entrypoint declaration found; mark the driver with entrypoint(fn)",
			Hints:   []string{"define a driver function and register it with entrypoint(main)"},
		}
	}
	entry, ok := functions[entrypointName]
	if !ok {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("entrypoint names %q, but no such top-level function exists", entrypointName),
			Hints:   []string{fmt.Sprintf("define function %s(mounts, params) { ... } at the top level", entrypointName)},
		}
	}
	model.entry = entry
	model.entryName = entrypointName

	scriptLog.Printf("Parsed script: %d params, %d steps, entrypoint %q",
		model.params.Len(), len(model.steps), entrypointName)
	return model, nil
}

// addDeclaration classifies one top-level const/var declaration.
// Declarations the compiler does not recognize are left alone; the script
// may carry helpers that only matter when it runs locally.
func (m *scriptModel) addDeclaration(src string, bindings []*ast.Binding) error {
	if len(bindings) != 1 {
		return &UnsupportedConstructError{
			Construct: "declaration",
			Detail:    "multiple assignment targets in one statement",
			Line:      declarationLine(src, bindings),
		}
	}
	binding := bindings[0]
	name, ok := bindingIdent(binding)
	if !ok {
		return &UnsupportedConstructError{
			Construct: "declaration target",
			Detail:    "destructuring assignments are not supported",
			Line:      declarationLine(src, bindings),
		}
	}

	call, ok := binding.Initializer.(*ast.CallExpression)
	if !ok {
		return nil
	}
	callee, ok := calleeName(call)
	if !ok {
		return nil
	}

	switch callee {
	case "WorkflowParams":
		if m.params != nil {
			return &ConfigurationError{
				Message: "multiple WorkflowParams declarations found; please declare exactly one",
				Hints:   []string{"merge the parameter sets into a single WorkflowParams(...) call"},
			}
		}
		params, err := m.parseWorkflowParams(src, call)
		if err != nil {
			return err
		}
		m.params = params
		m.paramsName = name
	case "MountPoints":
		if m.mounts != nil {
			return &ConfigurationError{
				Message: "multiple MountPoints declarations found; please declare exactly one",
				Hints:   []string{"merge the mount points into a single MountPoints(...) call"},
			}
		}
		mounts, err := m.parseMountPoints(src, call)
		if err != nil {
			return err
		}
		m.mounts = mounts
		m.mountsName = name
	case "step":
		def, err := m.parseStepDef(src, name, call)
		if err != nil {
			return err
		}
		m.steps[name] = def
	}
	return nil
}

func (m *scriptModel) parseWorkflowParams(src string, call *ast.CallExpression) (*pipeline.WorkflowParams, error) {
	obj, err := singleObjectArgument(src, call, "WorkflowParams")
	if err != nil {
		return nil, err
	}
	entries, err := objectEntries(src, obj)
	if err != nil {
		return nil, err
	}

	pairs := make([]pipeline.Pair, 0, len(entries))
	for _, e := range entries {
		value, ok := stringValue(e.value)
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "workflow parameter value",
				Detail:    fmt.Sprintf("parameter %q must be a string literal", e.key),
				Line:      e.line,
			}
		}
		pairs = append(pairs, pipeline.Pair{Name: e.key, Value: value})
	}
	params, err := pipeline.NewWorkflowParams(pairs...)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}
	return params, nil
}

func (m *scriptModel) parseMountPoints(src string, call *ast.CallExpression) (*pipeline.MountPoints, error) {
	obj, err := singleObjectArgument(src, call, "MountPoints")
	if err != nil {
		return nil, err
	}
	entries, err := objectEntries(src, obj)
	if err != nil {
		return nil, err
	}

	mountEntries := make([]pipeline.MountEntry, 0, len(entries))
	for _, e := range entries {
		pointCall, ok := e.value.(*ast.CallExpression)
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "mount point value",
				Detail:    fmt.Sprintf("mount %q must be a MountPoint(local, remote) call", e.key),
				Line:      e.line,
			}
		}
		if name, ok := calleeName(pointCall); !ok || name != "MountPoint" {
			return nil, &UnsupportedConstructError{
				Construct: "mount point value",
				Detail:    fmt.Sprintf("mount %q must be a MountPoint(local, remote) call", e.key),
				Line:      e.line,
			}
		}
		if len(pointCall.ArgumentList) != 2 {
			return nil, &UnsupportedConstructError{
				Construct: "MountPoint call",
				Detail:    "expected MountPoint(local, remote)",
				Line:      e.line,
			}
		}

		local, ok := stringValue(pointCall.ArgumentList[0])
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "mount point local path",
				Detail:    "must be a string literal",
				Line:      e.line,
			}
		}
		remote, err := m.resolveConfigString(src, pointCall.ArgumentList[1])
		if err != nil {
			return nil, err
		}
		mountEntries = append(mountEntries, pipeline.MountEntry{
			Name:  e.key,
			Point: pipeline.MountPoint{Local: local, Remote: remote},
		})
	}
	mounts, err := pipeline.NewMountPoints(mountEntries...)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}
	return mounts, nil
}

// resolveConfigString resolves the remote-location grammar: a string
// literal, or a template literal whose interpolations are workflow
// parameter lookups. The result must be a literal at compile time.
func (m *scriptModel) resolveConfigString(src string, e ast.Expression) (string, error) {
	if s, ok := stringValue(e); ok {
		return s, nil
	}

	tmpl, ok := e.(*ast.TemplateLiteral)
	if !ok {
		return "", &UnsupportedConstructError{
			Construct: "remote location",
			Detail:    "must be a string literal or a template literal over workflow parameters",
			Line:      lineOf(src, e.Idx0()),
		}
	}

	var b []byte
	for i, elem := range tmpl.Elements {
		b = append(b, elem.Parsed.String()...)
		if i < len(tmpl.Expressions) {
			value, err := m.resolveConfigInterpolation(src, tmpl.Expressions[i])
			if err != nil {
				return "", err
			}
			b = append(b, value...)
		}
	}
	return string(b), nil
}

func (m *scriptModel) resolveConfigInterpolation(src string, e ast.Expression) (string, error) {
	sub, ok := asSubscript(e)
	if !ok {
		return "", &UnsupportedConstructError{
			Construct: "template interpolation",
			Detail:    "only workflow parameter lookups may be interpolated here",
			Line:      lineOf(src, e.Idx0()),
		}
	}
	if m.params == nil || sub.object != m.paramsName {
		return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: lineOf(src, e.Idx0())}
	}
	value, ok := m.params.Get(sub.key)
	if !ok {
		return "", &UnresolvedReferenceError{Object: sub.object, Key: sub.key, Line: lineOf(src, e.Idx0())}
	}
	return value, nil
}

func (m *scriptModel) parseStepDef(src, name string, call *ast.CallExpression) (*stepDef, error) {
	line := lineOf(src, call.Idx0())
	if len(call.ArgumentList) != 2 {
		return nil, &UnsupportedConstructError{
			Construct: "step definition",
			Detail:    "expected step(image, function (input, output) {...})",
			Line:      line,
		}
	}
	image, ok := stringValue(call.ArgumentList[0])
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "step image",
			Detail:    "must be a string literal",
			Line:      line,
		}
	}
	fn, ok := call.ArgumentList[1].(*ast.FunctionLiteral)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "step body",
			Detail:    "must be a function expression",
			Line:      line,
		}
	}
	return &stepDef{name: name, image: image, fn: fn}, nil
}

func singleObjectArgument(src string, call *ast.CallExpression, what string) (*ast.ObjectLiteral, error) {
	if len(call.ArgumentList) != 1 {
		return nil, &UnsupportedConstructError{
			Construct: what + " call",
			Detail:    "expected a single object literal argument",
			Line:      lineOf(src, call.Idx0()),
		}
	}
	obj, ok := call.ArgumentList[0].(*ast.ObjectLiteral)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: what + " argument",
			Detail:    "expected an object literal",
			Line:      lineOf(src, call.Idx0()),
		}
	}
	return obj, nil
}

func declarationLine(src string, bindings []*ast.Binding) int {
	if len(bindings) > 0 {
		return lineOf(src, bindings[0].Target.Idx0())
	}
	return 0
}

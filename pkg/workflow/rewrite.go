package workflow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"

	"github.com/flowforge/flowc/pkg/logger"
	"github.com/flowforge/flowc/pkg/pipeline"
)

var rewriteLog = logger.New("workflow:rewrite")

// replacement substitutes text for one byte span of the source.
type replacement struct {
	start int
	end   int
	text  string
}

// rewriteStepBody extracts the step function's body source and rewrites
// every reference through the input/output arguments into a placeholder
// token the engine substitutes at run time. The original source text is
// preserved verbatim everywhere else.
func rewriteStepBody(src string, step *WorkflowStep) (string, error) {
	blk, ok := functionBlock(step.Body)
	if !ok {
		return "", &UnsupportedConstructError{
			Construct: "step body",
			Detail:    fmt.Sprintf("%s must have a plain function body", step.FuncName),
		}
	}

	w := &bodyRewriter{src: src, step: step}
	for _, stmt := range blk.List {
		if err := w.walkStmt(stmt); err != nil {
			return "", err
		}
	}

	// The body is everything between the braces, exclusive.
	start := int(blk.LeftBrace)
	end := offsetOf(blk.RightBrace)
	body, err := applyReplacements(src, start, end, w.repls)
	if err != nil {
		return "", err
	}

	rewriteLog.Printf("Rewrote body of %s: %d replacements", step.FuncName, len(w.repls))
	return dedent(body), nil
}

// applyReplacements splices the replacements into src[start:end]. Spans
// nested inside an already applied span are dropped; their text was
// consumed by the outer rewrite.
func applyReplacements(src string, start, end int, repls []replacement) (string, error) {
	if start < 0 || end > len(src) || start > end {
		return "", fmt.Errorf("invalid body span %d..%d", start, end)
	}
	sort.Slice(repls, func(i, j int) bool {
		if repls[i].start != repls[j].start {
			return repls[i].start < repls[j].start
		}
		return repls[i].end > repls[j].end
	})

	var b strings.Builder
	pos := start
	for _, r := range repls {
		if r.start < pos || r.end > end {
			continue
		}
		b.WriteString(src[pos:r.start])
		b.WriteString(r.text)
		pos = r.end
	}
	b.WriteString(src[pos:end])
	return b.String(), nil
}

// dedent strips surrounding blank lines and the common leading whitespace
// shared by all remaining lines.
func dedent(body string) string {
	lines := strings.Split(body, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	indent := ""
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if i == 0 || len(lead) < len(indent) {
			indent = lead
		}
		if !strings.HasPrefix(line, indent) {
			indent = ""
			break
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, indent)
	}
	return strings.Join(lines, "\n")
}

// bodyRewriter walks a step body collecting replacements. It never
// modifies the AST; all edits are recorded as byte spans against the
// original source.
type bodyRewriter struct {
	src   string
	step  *WorkflowStep
	repls []replacement
}

func (w *bodyRewriter) walkStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.BlockStatement:
		for _, inner := range s.List {
			if err := w.walkStmt(inner); err != nil {
				return err
			}
		}
	case *ast.ExpressionStatement:
		return w.walkExpr(s.Expression)
	case *ast.LexicalDeclaration:
		return w.walkBindings(s.List)
	case *ast.VariableStatement:
		return w.walkBindings(s.List)
	case *ast.ReturnStatement:
		return w.walkExpr(s.Argument)
	case *ast.ThrowStatement:
		return w.walkExpr(s.Argument)
	case *ast.IfStatement:
		if err := w.walkExpr(s.Test); err != nil {
			return err
		}
		if err := w.walkStmt(s.Consequent); err != nil {
			return err
		}
		return w.walkStmt(s.Alternate)
	case *ast.WhileStatement:
		if err := w.walkExpr(s.Test); err != nil {
			return err
		}
		return w.walkStmt(s.Body)
	case *ast.DoWhileStatement:
		if err := w.walkExpr(s.Test); err != nil {
			return err
		}
		return w.walkStmt(s.Body)
	}
	return nil
}

func (w *bodyRewriter) walkBindings(bindings []*ast.Binding) error {
	for _, b := range bindings {
		if err := w.walkExpr(b.Initializer); err != nil {
			return err
		}
	}
	return nil
}

func (w *bodyRewriter) walkExpr(e ast.Expression) error {
	switch x := e.(type) {
	case nil:
		return nil

	case *ast.CallExpression:
		handled, err := w.rewriteOpenCall(x)
		if handled || err != nil {
			return err
		}
		if err := w.walkExpr(x.Callee); err != nil {
			return err
		}
		for _, arg := range x.ArgumentList {
			if err := w.walkExpr(arg); err != nil {
				return err
			}
		}

	case *ast.BracketExpression:
		if ms, ok := asMemberSubscript(x); ok {
			if _, _, bound := w.scopeFor(ms.object); bound {
				return w.rewriteSubscript(ms)
			}
		}
		if dot, ok := x.Left.(*ast.DotExpression); ok {
			if obj, ok := identName(dot.Left); ok {
				if _, _, bound := w.scopeFor(obj); bound {
					return &UnsupportedConstructError{
						Construct: "bundle access",
						Detail:    fmt.Sprintf("%s keys must be constant strings", obj),
						Line:      lineOf(w.src, x.Idx0()),
					}
				}
			}
		}
		if err := w.walkExpr(x.Left); err != nil {
			return err
		}
		return w.walkExpr(x.Member)

	case *ast.DotExpression:
		if obj, ok := identName(x.Left); ok {
			if _, _, bound := w.scopeFor(obj); bound {
				return &UnsupportedConstructError{
					Construct: "bundle access",
					Detail:    fmt.Sprintf(`%s supports only %s.parameters["..."] and %s.artifacts["..."]`, obj, obj, obj),
					Line:      lineOf(w.src, x.Idx0()),
				}
			}
		}
		return w.walkExpr(x.Left)

	case *ast.Identifier:
		name := x.Name.String()
		if _, _, bound := w.scopeFor(name); bound {
			return &UnsupportedConstructError{
				Construct: "bundle access",
				Detail:    fmt.Sprintf("%s cannot be used as a plain value", name),
				Line:      lineOf(w.src, x.Idx0()),
			}
		}

	case *ast.BinaryExpression:
		if err := w.walkExpr(x.Left); err != nil {
			return err
		}
		return w.walkExpr(x.Right)

	case *ast.AssignExpression:
		if err := w.walkExpr(x.Left); err != nil {
			return err
		}
		return w.walkExpr(x.Right)

	case *ast.ConditionalExpression:
		if err := w.walkExpr(x.Test); err != nil {
			return err
		}
		if err := w.walkExpr(x.Consequent); err != nil {
			return err
		}
		return w.walkExpr(x.Alternate)

	case *ast.UnaryExpression:
		return w.walkExpr(x.Operand)

	case *ast.TemplateLiteral:
		for _, expr := range x.Expressions {
			if err := w.walkExpr(expr); err != nil {
				return err
			}
		}

	case *ast.ObjectLiteral:
		for _, prop := range x.Value {
			keyed, ok := prop.(*ast.PropertyKeyed)
			if !ok {
				continue
			}
			if keyed.Computed {
				if err := w.walkExpr(keyed.Key); err != nil {
					return err
				}
			}
			if err := w.walkExpr(keyed.Value); err != nil {
				return err
			}
		}

	case *ast.ArrayLiteral:
		for _, elem := range x.Value {
			if err := w.walkExpr(elem); err != nil {
				return err
			}
		}

	case *ast.SequenceExpression:
		for _, expr := range x.Sequence {
			if err := w.walkExpr(expr); err != nil {
				return err
			}
		}

	case *ast.NewExpression:
		if err := w.walkExpr(x.Callee); err != nil {
			return err
		}
		for _, arg := range x.ArgumentList {
			if err := w.walkExpr(arg); err != nil {
				return err
			}
		}
	}
	return nil
}

// scopeFor maps a step argument name to its placeholder scope and resolved
// bundle.
func (w *bodyRewriter) scopeFor(name string) (string, *pipeline.Transput, bool) {
	switch name {
	case w.step.InputArg:
		return "inputs", w.step.Inputs, true
	case w.step.OutputArg:
		return "outputs", w.step.Outputs, true
	default:
		return "", nil, false
	}
}

// rewriteSubscript replaces `arg.parameters["x"]` / `arg.artifacts["f"]`
// with a placeholder string literal. The referenced name must exist in the
// step's resolved bundle.
func (w *bodyRewriter) rewriteSubscript(ms memberSubscript) error {
	scope, bundle, _ := w.scopeFor(ms.object)
	line := lineOf(w.src, ms.node.Idx0())

	var token string
	switch ms.member {
	case "parameters":
		if bundle.Parameter(ms.key) == nil {
			return &UnresolvedReferenceError{Object: ms.object + ".parameters", Key: ms.key, Line: line}
		}
		token = fmt.Sprintf("{{%s.parameters.%s}}", scope, ms.key)
	case "artifacts":
		if bundle.Artifact(ms.key) == nil {
			return &UnresolvedReferenceError{Object: ms.object + ".artifacts", Key: ms.key, Line: line}
		}
		token = fmt.Sprintf("{{%s.artifacts.%s.path}}", scope, ms.key)
	default:
		return &UnsupportedConstructError{
			Construct: "bundle access",
			Detail:    fmt.Sprintf("unknown field %q; expected parameters or artifacts", ms.member),
			Line:      line,
		}
	}

	w.repls = append(w.repls, replacement{
		start: offsetOf(ms.node.Idx0()),
		end:   offsetOf(ms.node.Idx1()),
		text:  strconv.Quote(token),
	})
	return nil
}

// rewriteOpenCall handles `arg.artifacts["f"].open(...)`, turning it into
// an openFile(path, mode) call. The mode is fixed by the bundle's side:
// inputs open read-only, outputs write-only; an explicit mode argument may
// restate that but not contradict it. Permanent output artifacts accept a
// file name fragment appended to the artifact path.
func (w *bodyRewriter) rewriteOpenCall(call *ast.CallExpression) (bool, error) {
	dot, ok := call.Callee.(*ast.DotExpression)
	if !ok || dot.Identifier.Name.String() != "open" {
		return false, nil
	}
	ms, ok := asMemberSubscript(dot.Left)
	if !ok {
		return false, nil
	}
	scope, bundle, bound := w.scopeFor(ms.object)
	if !bound {
		return false, nil
	}
	line := lineOf(w.src, call.Idx0())

	if ms.member != "artifacts" {
		return true, &UnsupportedConstructError{
			Construct: "open call",
			Detail:    "only artifacts can be opened",
			Line:      line,
		}
	}
	stored := bundle.Artifact(ms.key)
	if stored == nil {
		return true, &UnresolvedReferenceError{Object: ms.object + ".artifacts", Key: ms.key, Line: line}
	}

	fragment, explicitMode, err := w.parseOpenArguments(call)
	if err != nil {
		return true, err
	}

	mode := "r"
	if scope == "outputs" {
		mode = "w"
	}
	if explicitMode != "" && explicitMode != mode {
		return true, &UnsupportedConstructError{
			Construct: "open mode",
			Detail:    fmt.Sprintf("artifact %q belongs to %s and is always opened with mode %q", ms.key, scope, mode),
			Line:      line,
		}
	}

	path := strconv.Quote(fmt.Sprintf("{{%s.artifacts.%s.path}}", scope, ms.key))
	if fragment != nil {
		if scope != "outputs" {
			return true, &UnsupportedConstructError{
				Construct: "open call",
				Detail:    fmt.Sprintf("input artifact %q already names a single file", ms.key),
				Line:      line,
			}
		}
		if _, temporary := stored.(pipeline.TemporaryArtifact); temporary {
			return true, &UnsupportedConstructError{
				Construct: "open call",
				Detail:    fmt.Sprintf("temporary artifact %q already names a single file", ms.key),
				Line:      line,
			}
		}
		path, err = w.openPathWithFragment(scope, ms.key, fragment)
		if err != nil {
			return true, err
		}
	}

	w.repls = append(w.repls, replacement{
		start: offsetOf(call.Idx0()),
		end:   offsetOf(call.Idx1()),
		text:  fmt.Sprintf("openFile(%s, %q)", path, mode),
	})
	return true, nil
}

// parseOpenArguments splits open's arguments into an optional file name
// fragment and an optional explicit mode, accepting both the positional
// mode string and the `{mode: "..."}` options-object style.
func (w *bodyRewriter) parseOpenArguments(call *ast.CallExpression) (fragment ast.Expression, mode string, err error) {
	for _, arg := range call.ArgumentList {
		line := lineOf(w.src, arg.Idx0())

		if obj, ok := arg.(*ast.ObjectLiteral); ok {
			entries, err := objectEntries(w.src, obj)
			if err != nil {
				return nil, "", err
			}
			for _, e := range entries {
				if e.key != "mode" {
					return nil, "", &UnsupportedConstructError{
						Construct: "open options",
						Detail:    fmt.Sprintf("unknown option %q; only mode is supported", e.key),
						Line:      e.line,
					}
				}
				value, ok := stringValue(e.value)
				if !ok {
					return nil, "", &UnsupportedConstructError{
						Construct: "open mode",
						Detail:    "mode must be a string literal",
						Line:      e.line,
					}
				}
				mode = value
			}
			continue
		}

		if s, ok := stringValue(arg); ok && (s == "r" || s == "w") {
			mode = s
			continue
		}

		if fragment != nil {
			return nil, "", &UnsupportedConstructError{
				Construct: "open call",
				Detail:    "at most one file name may be given",
				Line:      line,
			}
		}
		switch arg.(type) {
		case *ast.StringLiteral, *ast.TemplateLiteral:
			fragment = arg
		default:
			return nil, "", &UnsupportedConstructError{
				Construct: "open file name",
				Detail:    "must be a string or template literal",
				Line:      line,
			}
		}
	}
	return fragment, mode, nil
}

// openPathWithFragment builds the path expression for a permanent output:
// the artifact placeholder, a slash, and the caller's file name. Template
// literal fragments keep their source shape with any bundle references
// rewritten in place.
func (w *bodyRewriter) openPathWithFragment(scope, key string, fragment ast.Expression) (string, error) {
	placeholder := fmt.Sprintf("{{%s.artifacts.%s.path}}", scope, key)

	if s, ok := stringValue(fragment); ok {
		return strconv.Quote(placeholder + "/" + s), nil
	}

	sub := &bodyRewriter{src: w.src, step: w.step}
	if err := sub.walkExpr(fragment); err != nil {
		return "", err
	}
	rewritten, err := applyReplacements(w.src, offsetOf(fragment.Idx0()), offsetOf(fragment.Idx1()), sub.repls)
	if err != nil {
		return "", err
	}
	return strconv.Quote(placeholder+"/") + " + " + rewritten, nil
}

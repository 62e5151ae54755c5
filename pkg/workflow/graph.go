package workflow

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/flowforge/flowc/pkg/logger"
)

var graphLog = logger.New("workflow:graph")

// buildGraph walks the driver routine's statements in source order and
// produces the step graph: an ordered sequence of groups, where a group is
// either a single unconditional step or the mutually exclusive branches of
// one conditional.
func (r *resolver) buildGraph(model *scriptModel) ([][]*WorkflowStep, error) {
	blk, ok := functionBlock(model.entry)
	if !ok {
		return nil, &UnsupportedConstructError{
			Construct: "entrypoint body",
			Detail:    "the driver must have a plain function body",
		}
	}

	var groups [][]*WorkflowStep
	for _, stmt := range blk.List {
		switch s := stmt.(type) {
		case *ast.LexicalDeclaration:
			if err := r.bindTransput(model, s.List); err != nil {
				return nil, err
			}
		case *ast.VariableStatement:
			if err := r.bindTransput(model, s.List); err != nil {
				return nil, err
			}
		case *ast.ExpressionStatement:
			call, ok := s.Expression.(*ast.CallExpression)
			if !ok {
				return nil, &UnsupportedConstructError{
					Construct: "driver statement",
					Detail:    "only step calls, bundle bindings and conditionals are supported",
					Line:      lineOf(r.src, s.Expression.Idx0()),
				}
			}
			step, err := r.makeWorkflowStep(model, call, "")
			if err != nil {
				return nil, err
			}
			groups = append(groups, []*WorkflowStep{step})
		case *ast.IfStatement:
			branches, err := r.buildBranches(model, s)
			if err != nil {
				return nil, err
			}
			groups = append(groups, branches)
		case *ast.ReturnStatement:
			if s.Argument != nil {
				return nil, &UnsupportedConstructError{
					Construct: "return value",
					Detail:    "the driver cannot return a value",
					Line:      lineOf(r.src, s.Idx0()),
				}
			}
		case *ast.EmptyStatement:
			// Stray semicolons are harmless.
		default:
			return nil, &UnsupportedConstructError{
				Construct: fmt.Sprintf("driver statement (%T)", stmt),
				Line:      lineOf(r.src, stmt.Idx0()),
			}
		}
	}

	graphLog.Printf("Built step graph with %d groups", len(groups))
	return groups, nil
}

// bindTransput records a `const name = Input({...})` or `Output({...})`
// binding into the context. Any other initializer is outside the driver
// grammar and rejected rather than approximated.
func (r *resolver) bindTransput(model *scriptModel, bindings []*ast.Binding) error {
	if len(bindings) != 1 {
		return &UnsupportedConstructError{
			Construct: "driver declaration",
			Detail:    "multiple assignment targets in one statement",
			Line:      declarationLine(r.src, bindings),
		}
	}
	binding := bindings[0]
	name, ok := bindingIdent(binding)
	if !ok {
		return &UnsupportedConstructError{
			Construct: "driver declaration target",
			Detail:    "destructuring assignments are not supported",
			Line:      declarationLine(r.src, bindings),
		}
	}
	line := lineOf(r.src, binding.Target.Idx0())

	call, ok := binding.Initializer.(*ast.CallExpression)
	if !ok {
		return &UnsupportedConstructError{
			Construct: "driver declaration",
			Detail:    fmt.Sprintf("%q must be bound to an Input or Output bundle", name),
			Line:      line,
		}
	}

	switch callee, _ := calleeName(call); callee {
	case "Input":
		t, err := r.resolveTransput(call, fmt.Sprintf("input bundle %q", name))
		if err != nil {
			return err
		}
		r.ctx.Inputs[name] = t
	case "Output":
		t, err := r.resolveTransput(call, fmt.Sprintf("output bundle %q", name))
		if err != nil {
			return err
		}
		r.ctx.Outputs[name] = t
	default:
		return &UnsupportedConstructError{
			Construct: "driver declaration",
			Detail:    fmt.Sprintf("%q must be bound to an Input or Output bundle", name),
			Line:      line,
		}
	}
	return nil
}

// buildBranches converts an if / else-if chain into one group of guarded
// steps. Each branch body must be exactly one step call; a trailing plain
// else has no condition to guard on and is rejected.
func (r *resolver) buildBranches(model *scriptModel, stmt *ast.IfStatement) ([]*WorkflowStep, error) {
	var branches []*WorkflowStep

	current := stmt
	for {
		guard, err := r.guardCondition(current.Test)
		if err != nil {
			return nil, err
		}
		call, err := r.singleCallStatement(current.Consequent)
		if err != nil {
			return nil, err
		}
		step, err := r.makeWorkflowStep(model, call, guard)
		if err != nil {
			return nil, err
		}
		branches = append(branches, step)

		switch alt := current.Alternate.(type) {
		case nil:
			return branches, nil
		case *ast.IfStatement:
			current = alt
		default:
			return nil, &UnsupportedConstructError{
				Construct: "else branch",
				Detail:    "a plain else has no guard; write an explicit else-if condition",
				Line:      lineOf(r.src, current.Alternate.Idx0()),
			}
		}
	}
}

// singleCallStatement unwraps a branch body to its single step call.
func (r *resolver) singleCallStatement(stmt ast.Statement) (*ast.CallExpression, error) {
	line := lineOf(r.src, stmt.Idx0())

	switch s := stmt.(type) {
	case *ast.BlockStatement:
		if len(s.List) != 1 {
			return nil, &UnsupportedConstructError{
				Construct: "conditional branch",
				Detail:    "each branch must contain exactly one step call",
				Line:      line,
			}
		}
		return r.singleCallStatement(s.List[0])
	case *ast.ExpressionStatement:
		call, ok := s.Expression.(*ast.CallExpression)
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "conditional branch",
				Detail:    "each branch must contain exactly one step call",
				Line:      line,
			}
		}
		return call, nil
	case *ast.IfStatement:
		return nil, &UnsupportedConstructError{
			Construct: "nested conditional",
			Detail:    "conditionals cannot be nested",
			Line:      line,
		}
	default:
		return nil, &UnsupportedConstructError{
			Construct: "conditional branch",
			Detail:    "each branch must contain exactly one step call",
			Line:      line,
		}
	}
}

// guardCondition renders a branch test as the engine's guard string. Only
// comparisons between a workflow parameter and a constant are supported.
func (r *resolver) guardCondition(test ast.Expression) (string, error) {
	line := lineOf(r.src, test.Idx0())

	cmp, ok := test.(*ast.BinaryExpression)
	if !ok {
		return "", &UnsupportedConstructError{
			Construct: "conditional test",
			Detail:    "expected a comparison between a workflow parameter and a constant",
			Line:      line,
		}
	}

	op, ok := guardOperator(cmp.Operator)
	if !ok {
		return "", &UnsupportedConstructError{
			Construct: "comparison operator",
			Detail:    fmt.Sprintf("operator %q is not supported in guards", cmp.Operator.String()),
			Line:      line,
		}
	}

	left, leftIsParam, err := r.guardOperand(cmp.Left)
	if err != nil {
		return "", err
	}
	right, rightIsParam, err := r.guardOperand(cmp.Right)
	if err != nil {
		return "", err
	}
	if leftIsParam == rightIsParam {
		return "", &UnsupportedConstructError{
			Construct: "conditional test",
			Detail:    "guards must compare one workflow parameter against one constant",
			Line:      line,
		}
	}

	return fmt.Sprintf("%s %s %s", left, op, right), nil
}

func (r *resolver) guardOperand(e ast.Expression) (value string, isParam bool, err error) {
	if s, ok := stringValue(e); ok {
		return s, false, nil
	}
	if num, ok := e.(*ast.NumberLiteral); ok {
		return num.Literal, false, nil
	}
	if sub, ok := asSubscript(e); ok {
		resolved, err := r.resolveSubscript(sub)
		if err != nil {
			return "", false, err
		}
		return resolved, sub.object == r.ctx.ParamsName, nil
	}
	return "", false, &UnsupportedConstructError{
		Construct: "guard operand",
		Detail:    "expected a constant or a workflow parameter lookup",
		Line:      lineOf(r.src, e.Idx0()),
	}
}

func guardOperator(op token.Token) (string, bool) {
	switch op {
	case token.EQUAL, token.STRICT_EQUAL:
		return "==", true
	case token.NOT_EQUAL, token.STRICT_NOT_EQUAL:
		return "!=", true
	case token.LESS:
		return "<", true
	case token.GREATER:
		return ">", true
	case token.LESS_OR_EQUAL:
		return "<=", true
	case token.GREATER_OR_EQUAL:
		return ">=", true
	default:
		return "", false
	}
}

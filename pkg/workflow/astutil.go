package workflow

import (
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
)

// The goja parser is run with base offset 1, so a file.Idx maps to a byte
// offset by subtracting one.

func offsetOf(idx file.Idx) int {
	return int(idx) - 1
}

func lineOf(src string, idx file.Idx) int {
	off := offsetOf(idx)
	if off < 0 {
		off = 0
	}
	if off > len(src) {
		off = len(src)
	}
	return strings.Count(src[:off], "\n") + 1
}

// spanText returns the raw source text covered by a node.
func spanText(src string, n ast.Node) string {
	start, end := offsetOf(n.Idx0()), offsetOf(n.Idx1())
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return src[start:end]
}

func identName(e ast.Expression) (string, bool) {
	ident, ok := e.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return ident.Name.String(), true
}

func stringValue(e ast.Expression) (string, bool) {
	lit, ok := e.(*ast.StringLiteral)
	if !ok {
		return "", false
	}
	return lit.Value.String(), true
}

func isNullLiteral(e ast.Expression) bool {
	_, ok := e.(*ast.NullLiteral)
	return ok
}

func calleeName(call *ast.CallExpression) (string, bool) {
	return identName(call.Callee)
}

func bindingIdent(b *ast.Binding) (string, bool) {
	ident, ok := b.Target.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return ident.Name.String(), true
}

// functionBlock returns a function literal's body as a block statement.
func functionBlock(fn *ast.FunctionLiteral) (*ast.BlockStatement, bool) {
	var body ast.Statement = fn.Body
	blk, ok := body.(*ast.BlockStatement)
	return blk, ok
}

// parameterNames returns the declared parameter names of a function
// literal; plain identifiers only.
func parameterNames(fn *ast.FunctionLiteral) ([]string, bool) {
	if fn.ParameterList == nil {
		return nil, true
	}
	names := make([]string, 0, len(fn.ParameterList.List))
	for _, b := range fn.ParameterList.List {
		name, ok := bindingIdent(b)
		if !ok {
			return nil, false
		}
		names = append(names, name)
	}
	return names, true
}

// propertyEntry is one key/value pair of an object literal, in source
// order.
type propertyEntry struct {
	key   string
	value ast.Expression
	line  int
}

// objectEntries flattens an object literal into ordered key/value pairs.
// Keys must be constant strings or plain identifiers; computed keys,
// shorthand and spread are outside the script grammar.
func objectEntries(src string, obj *ast.ObjectLiteral) ([]propertyEntry, error) {
	entries := make([]propertyEntry, 0, len(obj.Value))
	for _, prop := range obj.Value {
		keyed, ok := prop.(*ast.PropertyKeyed)
		if !ok {
			return nil, &UnsupportedConstructError{
				Construct: "object property",
				Detail:    "only plain key: value properties are supported",
				Line:      lineOf(src, obj.Idx0()),
			}
		}
		if keyed.Computed {
			return nil, &UnsupportedConstructError{
				Construct: "computed object key",
				Detail:    "object keys must be constant strings",
				Line:      lineOf(src, keyed.Key.Idx0()),
			}
		}

		var key string
		switch k := keyed.Key.(type) {
		case *ast.StringLiteral:
			key = k.Value.String()
		case *ast.Identifier:
			key = k.Name.String()
		default:
			return nil, &UnsupportedConstructError{
				Construct: "object key",
				Detail:    "object keys must be constant strings",
				Line:      lineOf(src, keyed.Key.Idx0()),
			}
		}
		entries = append(entries, propertyEntry{
			key:   key,
			value: keyed.Value,
			line:  lineOf(src, keyed.Key.Idx0()),
		})
	}
	return entries, nil
}

// subscript matches an `object[key]` expression with an identifier object
// and a constant string key.
type subscript struct {
	object string
	key    string
	node   *ast.BracketExpression
}

func asSubscript(e ast.Expression) (subscript, bool) {
	bracket, ok := e.(*ast.BracketExpression)
	if !ok {
		return subscript{}, false
	}
	object, ok := identName(bracket.Left)
	if !ok {
		return subscript{}, false
	}
	key, ok := stringValue(bracket.Member)
	if !ok {
		return subscript{}, false
	}
	return subscript{object: object, key: key, node: bracket}, true
}

// memberSubscript matches `object.member[key]`, the shape used for
// transput access (`prev.parameters["x"]`, `out.artifacts["f"]`).
type memberSubscript struct {
	object string
	member string
	key    string
	node   *ast.BracketExpression
}

func asMemberSubscript(e ast.Expression) (memberSubscript, bool) {
	bracket, ok := e.(*ast.BracketExpression)
	if !ok {
		return memberSubscript{}, false
	}
	dot, ok := bracket.Left.(*ast.DotExpression)
	if !ok {
		return memberSubscript{}, false
	}
	object, ok := identName(dot.Left)
	if !ok {
		return memberSubscript{}, false
	}
	key, ok := stringValue(bracket.Member)
	if !ok {
		return memberSubscript{}, false
	}
	return memberSubscript{
		object: object,
		member: dot.Identifier.Name.String(),
		key:    key,
		node:   bracket,
	}, true
}

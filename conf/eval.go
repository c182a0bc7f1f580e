package conf

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// programs caches compiled literal expressions keyed by the xxh3 hash of
// their source. A nil entry marks text that is not a literal expression.
var programs sync.Map

// plainText matches text that would evaluate as arithmetic but reads as
// something else: a calendar date such as "2024-10-16", or a number with a
// leading zero such as the "05" in "10-05".
var plainText = regexp.MustCompile(`^\s*\d{4}-\d{1,2}-\d{1,2}\b|(^|[^\w.])0\d`)

// literalOperators are the operators a literal expression may use.
var literalOperators = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {}, "%": {}, "**": {}, "^": {},
	"==": {}, "!=": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
	"&&": {}, "||": {}, "and": {}, "or": {}, "!": {}, "not": {},
}

// literalChecker rejects any node that could read names, call functions,
// or access members.
type literalChecker struct {
	rejected bool
}

// Visit implements ast.Visitor for literalChecker.
func (c *literalChecker) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.NilNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.StringNode, *ast.ConstantNode, *ast.ArrayNode, *ast.MapNode,
		*ast.PairNode:

	case *ast.UnaryNode:
		if _, ok := literalOperators[n.Operator]; !ok {
			c.rejected = true
		}

	case *ast.BinaryNode:
		if _, ok := literalOperators[n.Operator]; !ok {
			c.rejected = true
		}

	default:
		c.rejected = true
	}
}

// compileLiteral returns the compiled program for text, or nil if text is
// not a literal expression.
func compileLiteral(text string) (*vm.Program, error) {
	key := xxh3.HashString(text)
	if p, ok := programs.Load(key); ok {
		return p.(*vm.Program), nil
	}

	if plainText.MatchString(text) {
		programs.Store(key, (*vm.Program)(nil))

		return nil, nil //nolint:nilnil // not a literal
	}

	tree, err := parser.Parse(text)
	if err != nil {
		programs.Store(key, (*vm.Program)(nil))

		return nil, nil //nolint:nilnil // not an expression
	}

	var check literalChecker
	ast.Walk(&tree.Node, &check)

	if check.rejected {
		programs.Store(key, (*vm.Program)(nil))

		return nil, nil //nolint:nilnil // not a literal
	}

	program, err := expr.Compile(text)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("text", text))
	}

	programs.Store(key, program)

	return program, nil
}

// evalLiteral evaluates text as a literal expression such as "512 / 64" or
// "[1, 2]". Text that does not parse, that refers to names, or that matches
// plainText is returned unchanged.
func evalLiteral(text string) (any, error) {
	program, err := compileLiteral(text)
	if err != nil {
		return nil, err
	}

	if program == nil {
		return text, nil
	}

	out, err := expr.Run(program, nil)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("text", text))
	}

	return out, nil
}

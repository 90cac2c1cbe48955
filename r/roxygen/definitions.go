package roxygen

import (
	"strings"

	"github.com/dhamidi/rfmt/r/parser"
)

// Definition is a top-level function definition and its documentation.
type Definition struct {
	Name      string
	Statement *parser.Node
	Function  *parser.Node
	Block     *Block // nil when the definition has no doc comments
}

// Definitions lists the top-level statements of program that bind a
// function to a name, in source order.
func Definitions(program *parser.Node) []Definition {
	var defs []Definition
	for _, stmt := range program.Statements() {
		name, fn := functionBinding(stmt)
		if fn == nil {
			continue
		}
		defs = append(defs, Definition{
			Name:      name,
			Statement: stmt,
			Function:  fn,
			Block:     ParseTrivia(stmt.DocComments()),
		})
	}
	return defs
}

// Documented is like Definitions but keeps only definitions with a
// roxygen block.
func Documented(program *parser.Node) []Definition {
	var docs []Definition
	for _, def := range Definitions(program) {
		if def.Block != nil {
			docs = append(docs, def)
		}
	}
	return docs
}

func functionBinding(stmt *parser.Node) (string, *parser.Node) {
	if stmt.Kind != parser.KindAssignment {
		return "", nil
	}
	op := stmt.Operator()
	if op == nil {
		return "", nil
	}
	target, value := stmt.Left(), stmt.Right()
	switch op.Kind {
	case parser.TokenRightAssign, parser.TokenSuperRightAssign:
		target, value = value, target
	case parser.TokenColonAssign:
		return "", nil
	}
	if target == nil || value == nil || value.Kind != parser.KindFunction {
		return "", nil
	}
	if target.Kind != parser.KindSymbol && !(target.Kind == parser.KindLiteral && target.Token.Kind == parser.TokenString) {
		return "", nil
	}
	return bindingName(target.TokenLiteral()), value
}

// bindingName strips the quotes or backticks around a name.
func bindingName(literal string) string {
	if len(literal) >= 2 {
		first, last := literal[0], literal[len(literal)-1]
		if first == last && (first == '`' || first == '"' || first == '\'') {
			return literal[1 : len(literal)-1]
		}
	}
	return strings.TrimSpace(literal)
}

package parser

import "sort"

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNone:
		return "none"
	}
	return "unknown"
}

type Arity int

const (
	ArityBinary Arity = iota
	ArityPrefix
)

// Operator describes how an operator token binds. Lower tiers bind looser.
type Operator struct {
	Symbol string
	Token  TokenKind
	Tier   int
	Assoc  Assoc
	Arity  Arity
}

// BindingPower returns the left binding power of the operator and the
// minimum binding power its right operand is parsed with.
func (o Operator) BindingPower() (left, right int) {
	left = o.Tier * 2
	if o.Assoc == AssocRight {
		return left, left
	}
	return left, left + 1
}

func (o Operator) IsAssignment() bool {
	switch o.Token {
	case TokenLeftAssign, TokenSuperAssign, TokenRightAssign, TokenSuperRightAssign, TokenEqAssign, TokenColonAssign:
		return true
	}
	return false
}

const (
	tierHelp = iota + 1
	tierEqAssign
	tierLeftAssign
	tierRightAssign
	tierTilde
	tierOr
	tierAnd
	tierNot
	tierCompare
	tierAdd
	tierMultiply
	tierSpecial
	tierRange
	tierUnary
	tierPower
)

// binaryOperators follows the precedence table of R's ?Syntax.
var binaryOperators = map[TokenKind]Operator{
	TokenQuestion:         {"?", TokenQuestion, tierHelp, AssocLeft, ArityBinary},
	TokenEqAssign:         {"=", TokenEqAssign, tierEqAssign, AssocRight, ArityBinary},
	TokenLeftAssign:       {"<-", TokenLeftAssign, tierLeftAssign, AssocRight, ArityBinary},
	TokenSuperAssign:      {"<<-", TokenSuperAssign, tierLeftAssign, AssocRight, ArityBinary},
	TokenColonAssign:      {":=", TokenColonAssign, tierLeftAssign, AssocRight, ArityBinary},
	TokenRightAssign:      {"->", TokenRightAssign, tierRightAssign, AssocLeft, ArityBinary},
	TokenSuperRightAssign: {"->>", TokenSuperRightAssign, tierRightAssign, AssocLeft, ArityBinary},
	TokenTilde:            {"~", TokenTilde, tierTilde, AssocLeft, ArityBinary},
	TokenOrOr:             {"||", TokenOrOr, tierOr, AssocLeft, ArityBinary},
	TokenOr:               {"|", TokenOr, tierOr, AssocLeft, ArityBinary},
	TokenAndAnd:           {"&&", TokenAndAnd, tierAnd, AssocLeft, ArityBinary},
	TokenAnd:              {"&", TokenAnd, tierAnd, AssocLeft, ArityBinary},
	TokenEqEq:             {"==", TokenEqEq, tierCompare, AssocNone, ArityBinary},
	TokenNotEq:            {"!=", TokenNotEq, tierCompare, AssocNone, ArityBinary},
	TokenLess:             {"<", TokenLess, tierCompare, AssocNone, ArityBinary},
	TokenGreater:          {">", TokenGreater, tierCompare, AssocNone, ArityBinary},
	TokenLessEq:           {"<=", TokenLessEq, tierCompare, AssocNone, ArityBinary},
	TokenGreaterEq:        {">=", TokenGreaterEq, tierCompare, AssocNone, ArityBinary},
	TokenPlus:             {"+", TokenPlus, tierAdd, AssocLeft, ArityBinary},
	TokenMinus:            {"-", TokenMinus, tierAdd, AssocLeft, ArityBinary},
	TokenStar:             {"*", TokenStar, tierMultiply, AssocLeft, ArityBinary},
	TokenSlash:            {"/", TokenSlash, tierMultiply, AssocLeft, ArityBinary},
	TokenSpecial:          {"%%", TokenSpecial, tierSpecial, AssocLeft, ArityBinary},
	TokenPipe:             {"|>", TokenPipe, tierSpecial, AssocLeft, ArityBinary},
	TokenColon:            {":", TokenColon, tierRange, AssocLeft, ArityBinary},
	TokenCaret:            {"^", TokenCaret, tierPower, AssocRight, ArityBinary},
}

// prefixOperators hard-codes R's unary tiers: "-" and "+" bind tighter than
// every binary operator except "^", while "!" sits below the comparisons.
var prefixOperators = map[TokenKind]Operator{
	TokenQuestion: {"?", TokenQuestion, tierHelp, AssocRight, ArityPrefix},
	TokenTilde:    {"~", TokenTilde, tierTilde, AssocRight, ArityPrefix},
	TokenBang:     {"!", TokenBang, tierNot, AssocRight, ArityPrefix},
	TokenPlus:     {"+", TokenPlus, tierUnary, AssocRight, ArityPrefix},
	TokenMinus:    {"-", TokenMinus, tierUnary, AssocRight, ArityPrefix},
}

func BinaryOperator(kind TokenKind) (Operator, bool) {
	op, ok := binaryOperators[kind]
	return op, ok
}

func PrefixOperator(kind TokenKind) (Operator, bool) {
	op, ok := prefixOperators[kind]
	return op, ok
}

// PrefixBindingPower is the minimum binding power of a prefix operator's
// operand: every binary operator of a strictly tighter tier is absorbed.
func (o Operator) PrefixBindingPower() int {
	return o.Tier*2 + 1
}

// Operators returns the full operator table, binary operators first, each
// group ordered from the loosest to the tightest tier.
func Operators() []Operator {
	var ops []Operator
	for _, group := range []map[TokenKind]Operator{binaryOperators, prefixOperators} {
		start := len(ops)
		for _, op := range group {
			ops = append(ops, op)
		}
		sortOperators(ops[start:])
	}
	return ops
}

func sortOperators(ops []Operator) {
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Tier != ops[j].Tier {
			return ops[i].Tier < ops[j].Tier
		}
		return ops[i].Token < ops[j].Token
	})
}

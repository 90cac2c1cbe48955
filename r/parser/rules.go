package parser

import "sync"

var (
	rGrammarOnce sync.Once
	rGrammar     *Grammar
)

// RGrammar returns the grammar of the R language surface. The rule names
// match the productions of the reference grammar in r.ebnf.
func RGrammar() *Grammar {
	rGrammarOnce.Do(func() {
		rGrammar = newRGrammar()
	})
	return rGrammar
}

func newRGrammar() *Grammar {
	g := NewGrammar()

	g.Define("Program", Build(KindProgram, Seq(Lines(Ref("Statement")), Expect(Tok(TokenEOF), "expected end of input"))))
	g.Define("Statement", Ref("Expr"))
	g.Define("Expr", Func((*Parser).parseExpr))

	g.Define("Operand", Postfix(Ref("Primary"),
		Suffix(KindCall, Ref("CallArgs")),
		Suffix(KindSubset, Ref("SubsetArgs")),
		Suffix(KindSubset2, Ref("Subset2Args")),
		Suffix(KindDollar, Seq(Tok(TokenDollar), Ref("Selector"))),
		Suffix(KindSlot, Seq(Tok(TokenAt), Ref("Selector"))),
	))
	g.Define("Primary", Choice(
		Ref("Namespace"),
		Ref("Constant"),
		Ref("Symbol"),
		Ref("Paren"),
		Ref("Block"),
		Ref("Function"),
		Ref("If"),
		Ref("For"),
		Ref("While"),
		Ref("Repeat"),
		Ref("Break"),
		Ref("Next"),
		Ref("Invalid"),
	))

	g.Define("Constant", Leaf(KindLiteral,
		TokenNumber, TokenString, TokenTrue, TokenFalse, TokenNull, TokenInf, TokenNaN,
		TokenNA, TokenNAInteger, TokenNAReal, TokenNACharacter, TokenNAComplex))
	g.Define("Symbol", Leaf(KindSymbol, TokenIdent))
	g.Define("Invalid", Leaf(KindError, TokenError))
	g.Define("Namespace", Build(KindNamespace, Seq(
		Leaf(KindSymbol, TokenIdent, TokenString),
		Tok(TokenColonColon, TokenColonColonColon),
		Expect(Leaf(KindSymbol, TokenIdent, TokenString), "expected name after namespace operator"),
	)))
	g.Define("Selector", Expect(Choice(
		Leaf(KindSymbol, TokenIdent),
		Leaf(KindLiteral, TokenString),
	), "expected name"))

	g.Define("Paren", Build(KindParen, Seq(
		Tok(TokenLParen),
		Nested(NestParen, Seq(
			Expect(Ref("Expr"), "expected expression"),
			Close(TokenRParen, "expected ')'"),
		)),
	)))
	g.Define("Block", Build(KindBlock, Seq(
		Tok(TokenLBrace),
		Nested(NestBrace, Lines(Ref("Statement"), TokenRBrace)),
		Close(TokenRBrace, "expected '}'"),
	)))

	g.Define("CallArgs", Seq(
		Tok(TokenLParen),
		Nested(NestParen, Seq(Opt(Ref("ArgList")), Close(TokenRParen, "expected ')'"))),
	))
	g.Define("SubsetArgs", Seq(
		Tok(TokenLBracket),
		Nested(NestBracket, Seq(Opt(Ref("ArgList")), Close(TokenRBracket, "expected ']'"))),
	))
	g.Define("Subset2Args", Seq(
		Tok(TokenLBB),
		Nested(NestBracket, Seq(
			Opt(Ref("ArgList")),
			Close(TokenRBracket, "expected ']]'"),
			Close(TokenRBracket, "expected ']]'"),
		)),
	))
	g.Define("ArgList", Seq(Not(Tok(TokenRParen, TokenRBracket, TokenEOF)), List(Ref("Arg"), TokenComma, "expected argument")))
	g.Define("Arg", Build(KindArg, Choice(
		Seq(Leaf(KindSymbol, TokenIdent), Tok(TokenEqAssign), Opt(Ref("ArgValue"))),
		Seq(Leaf(KindLiteral, TokenString, TokenNull), Tok(TokenEqAssign), Opt(Ref("ArgValue"))),
		Ref("ArgValue"),
		Build(KindMissing, Empty()),
	)))
	g.Define("ArgValue", Seq(Not(Ref("ArgEnd")), Ref("Expr")))
	g.Define("ArgEnd", Tok(TokenComma, TokenRParen, TokenRBracket))

	g.Define("Function", Build(KindFunction, Seq(
		Tok(TokenFunction, TokenBackslash),
		Expect(Ref("Formals"), "expected '(' after function"),
		Expect(Ref("Expr"), "expected function body"),
	)))
	g.Define("Formals", Seq(
		Tok(TokenLParen),
		Nested(NestParen, Seq(
			Opt(Seq(Not(Tok(TokenRParen)), List(Ref("Formal"), TokenComma, "expected parameter"))),
			Close(TokenRParen, "expected ')'"),
		)),
		SkipLines(),
	))
	g.Define("Formal", Build(KindFormal, Seq(
		Leaf(KindSymbol, TokenIdent),
		Opt(Seq(Tok(TokenEqAssign), Expect(Ref("Expr"), "expected default value"))),
	)))

	g.Define("If", Build(KindIf, Seq(
		Tok(TokenIf),
		Expect(Ref("Condition"), "expected '(' after if"),
		Expect(Ref("Expr"), "expected expression"),
		Opt(Ref("ElseClause")),
	)))
	g.Define("Condition", Seq(
		Tok(TokenLParen),
		Nested(NestParen, Seq(
			Expect(Ref("Expr"), "expected condition"),
			Close(TokenRParen, "expected ')'"),
		)),
		SkipLines(),
	))
	g.Define("ElseClause", Seq(
		SkipLinesBefore(TokenElse),
		Tok(TokenElse),
		SkipLines(),
		Expect(Ref("Expr"), "expected expression after else"),
	))

	g.Define("For", Build(KindFor, Seq(
		Tok(TokenFor),
		Expect(Ref("ForHeader"), "expected '(' after for"),
		Expect(Ref("Expr"), "expected loop body"),
	)))
	g.Define("ForHeader", Seq(
		Tok(TokenLParen),
		Nested(NestParen, Seq(
			Expect(Leaf(KindSymbol, TokenIdent), "expected loop variable"),
			Expect(Tok(TokenIn), "expected 'in'"),
			Expect(Ref("Expr"), "expected loop sequence"),
			Close(TokenRParen, "expected ')'"),
		)),
		SkipLines(),
	))
	g.Define("While", Build(KindWhile, Seq(
		Tok(TokenWhile),
		Expect(Ref("Condition"), "expected '(' after while"),
		Expect(Ref("Expr"), "expected loop body"),
	)))
	g.Define("Repeat", Build(KindRepeat, Seq(
		Tok(TokenRepeat),
		SkipLines(),
		Expect(Ref("Expr"), "expected loop body"),
	)))
	g.Define("Break", Leaf(KindBreak, TokenBreak))
	g.Define("Next", Leaf(KindNext, TokenNext))

	return g
}

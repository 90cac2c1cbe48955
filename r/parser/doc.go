// Package parser provides an error-tolerant, lossless parser for R source
// code.
//
// # Overview
//
// The parser produces a concrete syntax tree that keeps every byte of the
// input. Whitespace, comments and roxygen documentation comments ("#'") are
// attached to tokens as trivia, so writing out the tokens of a tree in order
// reproduces the source exactly. This makes the tree suitable as the input
// of a formatter.
//
// # Architecture
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Lexer     │────▶│   Grammar   │────▶│    Tree     │
//	│  (tokens,   │     │   (rules)   │     │   (Node)    │
//	│   trivia)   │     └──────┬──────┘     └─────────────┘
//	└─────────────┘            │ expression runs
//	                    ┌──────▼──────┐
//	                    │   Resolve   │
//	                    │ (operators) │
//	                    └─────────────┘
//
// The Lexer is pulled lazily. The first line break after a token becomes a
// Newline token; the parser turns it into trivia where R ignores line
// breaks: inside parentheses and brackets, after binary operators, after
// "else" and after the header of if, for, while and function.
//
// The statement level is described by a Grammar: named Rule values built
// from Seq, Choice, Many, Opt, Not and friends. Rules are data; the parser
// interprets them and every attempt returns an Outcome that is NoMatch,
// Matched or Recovered. Expressions are collected as flat runs of prefix
// operators, operands and binary operators and resolved by Resolve using
// the operator table in ops.go, which follows R's ?Syntax.
//
// # Errors
//
// Parsing never fails. Malformed input becomes an error node holding the
// skipped tokens plus a Diagnostic, and parsing resumes at the next line
// break, semicolon or enclosing closing delimiter.
//
// # Usage
//
//	result := parser.Parse(src, parser.WithFile("R/utils.R"))
//	for _, stmt := range result.Statements() {
//	    fmt.Println(stmt.Sexpr())
//	}
//	for _, d := range result.Diagnostics {
//	    fmt.Println(d)
//	}
package parser

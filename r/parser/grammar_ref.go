package parser

import _ "embed"

// ReferenceGrammar is the EBNF description of the surface recognized by
// RGrammar, in the notation of golang.org/x/exp/ebnf. It starts at
// "Program".
//
//go:embed r.ebnf
var ReferenceGrammar []byte

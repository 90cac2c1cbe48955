// Package roxygen parses roxygen2 documentation comments, the #' blocks
// written above R definitions.
package roxygen

// Node is the interface implemented by all roxygen AST nodes.
type Node interface {
	node()
}

// Block is one parsed roxygen block.
type Block struct {
	Title       []Node
	Description [][]Node // Paragraphs after the title
	Details     [][]Node
	Tags        []Node
}

func (Block) node() {}

// Text represents plain text content.
type Text struct {
	Content string
}

func (Text) node() {}

// Code represents `code` spans and \code{} macros.
type Code struct {
	Content string
}

func (Code) node() {}

// Link represents [topic], [label][topic] and \link{topic}.
type Link struct {
	Target string
	Label  string // Empty when the target is also the label
}

func (Link) node() {}

// Macro represents an Rd macro other than \code and \link, e.g. \emph{x}.
type Macro struct {
	Name    string
	Content []Node
}

func (Macro) node() {}

// Param represents a @param tag. One tag may document several
// comma-separated arguments.
type Param struct {
	Names       []string
	Description []Node
}

func (Param) node() {}

// Return represents a @return or @returns tag.
type Return struct {
	Description []Node
}

func (Return) node() {}

// Export represents an @export tag with an optional explicit name.
type Export struct {
	Name string
}

func (Export) node() {}

// Examples represents an @examples tag. The code is kept verbatim.
type Examples struct {
	Code string
}

func (Examples) node() {}

type RdName struct {
	Name string
}

func (RdName) node() {}

type SeeAlso struct {
	Description []Node
}

func (SeeAlso) node() {}

type InheritParams struct {
	Source string
}

func (InheritParams) node() {}

// UnknownTag represents any tag without dedicated handling.
type UnknownTag struct {
	Name    string
	Content []Node
}

func (UnknownTag) node() {}

// Params returns the @param tags of the block in order.
func (b *Block) Params() []Param {
	var params []Param
	for _, tag := range b.Tags {
		if p, ok := tag.(Param); ok {
			params = append(params, p)
		}
	}
	return params
}

// Exported reports whether the block carries an @export tag.
func (b *Block) Exported() bool {
	for _, tag := range b.Tags {
		if _, ok := tag.(Export); ok {
			return true
		}
	}
	return false
}

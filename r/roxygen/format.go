package roxygen

import (
	"strings"
)

// Format renders a block as readable plain text: title, description,
// details, then one line per tag.
func Format(b *Block) string {
	if b == nil {
		return ""
	}

	var sb strings.Builder
	if title := PlainText(b.Title); title != "" {
		sb.WriteString(title)
	}
	for _, section := range [][][]Node{b.Description, b.Details} {
		for _, para := range section {
			sb.WriteString("\n\n")
			sb.WriteString(PlainText(para))
		}
	}

	if len(b.Tags) > 0 && sb.Len() > 0 {
		sb.WriteString("\n")
	}
	for _, tag := range b.Tags {
		if s := formatTag(tag); s != "" {
			sb.WriteString("\n")
			sb.WriteString(s)
		}
	}

	return strings.TrimSpace(sb.String())
}

// Summary returns the title as one line of plain text.
func Summary(b *Block) string {
	if b == nil {
		return ""
	}
	return strings.Join(strings.Fields(PlainText(b.Title)), " ")
}

// PlainText renders inline content without markup.
func PlainText(nodes []Node) string {
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString(formatNode(node))
	}
	return normalizeWhitespace(sb.String())
}

func formatNode(node Node) string {
	switch n := node.(type) {
	case Text:
		return n.Content
	case Code:
		return "`" + n.Content + "`"
	case Link:
		if n.Label != "" {
			return n.Label
		}
		return n.Target
	case Macro:
		return PlainText(n.Content)
	}
	return ""
}

func formatTag(tag Node) string {
	switch t := tag.(type) {
	case Param:
		return "@param " + strings.Join(t.Names, ",") + " " + PlainText(t.Description)
	case Return:
		return "@return " + PlainText(t.Description)
	case Export:
		if t.Name != "" {
			return "@export " + t.Name
		}
		return "@export"
	case Examples:
		return "@examples\n" + t.Code
	case RdName:
		return "@rdname " + t.Name
	case SeeAlso:
		return "@seealso " + PlainText(t.Description)
	case InheritParams:
		return "@inheritParams " + t.Source
	case UnknownTag:
		return strings.TrimSpace("@" + t.Name + " " + PlainText(t.Content))
	}
	return ""
}

// normalizeWhitespace collapses line breaks inside a paragraph to spaces.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

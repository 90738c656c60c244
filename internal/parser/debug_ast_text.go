package parser

import (
	"jasper/internal/ast"
	"strings"
)

// RenderASTAsText produces an indented rendering with one node per line,
// which makes the head/argument nesting easy to check by eye.
func RenderASTAsText(node ast.Node, indent int) string {
	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Form:
		var sb strings.Builder
		if n.IsSequence() {
			for i, a := range n.Args {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(RenderASTAsText(a, indent))
			}
			return sb.String()
		}
		sb.WriteString(sp)
		sb.WriteString("(")
		if _, nested := n.Head.(*ast.Form); nested {
			sb.WriteString("\n")
			sb.WriteString(RenderASTAsText(n.Head, indent+1))
		} else {
			sb.WriteString(n.Head.String())
		}
		for _, a := range n.Args {
			sb.WriteString("\n")
			sb.WriteString(RenderASTAsText(a, indent+1))
		}
		sb.WriteString(")")
		return sb.String()

	case *ast.StringLiteral:
		return sp + "`" + n.Value
	case nil:
		return sp + "nil"
	default:
		return sp + n.String()
	}
}

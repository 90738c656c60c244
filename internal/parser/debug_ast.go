package parser

import (
	"fmt"
	"jasper/internal/ast"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// WalkAST recursively traverses a tree and serializes it into a map structure
// suitable for JSON or YAML output.
func WalkAST(node ast.Node) interface{} {
	switch n := node.(type) {
	case nil:
		return nil

	case *ast.Form:
		args := make([]interface{}, len(n.Args))
		for i, a := range n.Args {
			args[i] = WalkAST(a)
		}
		if n.IsSequence() {
			return map[string]interface{}{
				"type":        "Sequence",
				"expressions": args,
			}
		}
		return map[string]interface{}{
			"type": "Form",
			"head": WalkAST(n.Head),
			"args": args,
		}

	case *ast.Number:
		return map[string]interface{}{
			"type":  "Number",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.Symbol:
		return map[string]interface{}{
			"type":  "Symbol",
			"value": n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":  "String",
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	default:
		return map[string]interface{}{
			"type": fmt.Sprintf("%T", n),
		}
	}
}

// Render serializes a parsed tree in one of FormatJSON, FormatYAML or FormatText.
func Render(node ast.Node, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(node)
	case FormatYAML:
		return renderYAML(node)
	case FormatText:
		return []byte(RenderASTAsText(node, 0)), nil
	default:
		return nil, fmt.Errorf("unknown AST format %q, want one of json, yaml, text", format)
	}
}

package parser

import (
	"encoding/json"
	"jasper/internal/ast"

	"gopkg.in/yaml.v3"
)

func renderJSON(node ast.Node) ([]byte, error) {
	return json.MarshalIndent(WalkAST(node), "", "  ")
}

func renderYAML(node ast.Node) ([]byte, error) {
	return yaml.Marshal(WalkAST(node))
}

package rules

import (
	_ "embed"

	"github.com/rerades/ai-rules-cli/pkg/yaml"
)

//go:generate go run ../../internal/schemagen -kind rule -o rule.v1beta1.json

var (
	//go:embed rule.v1beta1.json
	ruleSchemaJSON []byte

	// RuleValidator validates rule frontmatter against the rule JSON schema.
	RuleValidator = yaml.MustNewValidator("/rule.v1beta1.json", ruleSchemaJSON)
)

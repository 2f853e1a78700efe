package adapters

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"gemcook/internal/types"
)

// gemSpecDocument mirrors the YAML RubyGems writes for a
// Gem::Specification (metadata.gz, `gem specification --yaml`). Ruby object
// tags are ignored; only the fields below are read.
type gemSpecDocument struct {
	Name         string             `yaml:"name"`
	Version      gemVersionNode     `yaml:"version"`
	Summary      string             `yaml:"summary"`
	Description  string             `yaml:"description"`
	Authors      []string           `yaml:"authors"`
	Email        stringOrList       `yaml:"email"`
	Homepage     string             `yaml:"homepage"`
	Licenses     []string           `yaml:"licenses"`
	Metadata     map[string]string  `yaml:"metadata"`
	Requirements []string           `yaml:"requirements"`
	RequirePaths []string           `yaml:"require_paths"`
	Dependencies []gemDependencyDoc `yaml:"dependencies"`
}

type gemDependencyDoc struct {
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Requirement gemRequirementNode `yaml:"requirement"`
}

// gemVersionNode accepts both a tagged Gem::Version mapping and a plain
// scalar.
type gemVersionNode string

func (v *gemVersionNode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = gemVersionNode(strings.TrimSpace(node.Value))
		return nil
	case yaml.MappingNode:
		var doc struct {
			Version string `yaml:"version"`
		}
		if err := node.Decode(&doc); err != nil {
			return err
		}
		*v = gemVersionNode(strings.TrimSpace(doc.Version))
		return nil
	default:
		return fmt.Errorf("line %d: unexpected version node", node.Line)
	}
}

// gemRequirementNode flattens a Gem::Requirement into strings such as
// "~> 1.0".
type gemRequirementNode []string

func (r *gemRequirementNode) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var out []string
		for _, part := range strings.Split(node.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*r = out
		return nil
	}
	var doc struct {
		Requirements []requirementPair `yaml:"requirements"`
	}
	if err := node.Decode(&doc); err != nil {
		return err
	}
	out := make([]string, 0, len(doc.Requirements))
	for _, pair := range doc.Requirements {
		out = append(out, pair.op+" "+pair.version)
	}
	*r = out
	return nil
}

type requirementPair struct {
	op      string
	version string
}

func (p *requirementPair) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: requirement must be an [operator, version] pair", node.Line)
	}
	var version gemVersionNode
	if err := node.Content[1].Decode(&version); err != nil {
		return err
	}
	p.op = strings.TrimSpace(node.Content[0].Value)
	p.version = string(version)
	return nil
}

// stringOrList accepts "a@b" as well as ["a@b", "c@d"].
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*s = nil
			return nil
		}
		*s = stringOrList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list", node.Line)
	}
}

// parseGemSpec decodes a Gem::Specification YAML document.
func parseGemSpec(data []byte, source string) (types.GemSpec, error) {
	var doc gemSpecDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.GemSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse gem specification %s", source)).
			WithCause(err)
	}
	if strings.TrimSpace(doc.Name) == "" || doc.Version == "" {
		return types.GemSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("gem specification %s has no name or version", source))
	}
	spec := types.GemSpec{
		Name:         strings.TrimSpace(doc.Name),
		Version:      string(doc.Version),
		Summary:      doc.Summary,
		Description:  doc.Description,
		Authors:      doc.Authors,
		Email:        doc.Email,
		Homepage:     doc.Homepage,
		Licenses:     doc.Licenses,
		Metadata:     doc.Metadata,
		Requirements: doc.Requirements,
		RequirePaths: doc.RequirePaths,
	}
	if len(spec.RequirePaths) == 0 {
		spec.RequirePaths = []string{"lib"}
	}
	for _, dep := range doc.Dependencies {
		depType := types.GemDependencyType(strings.TrimPrefix(strings.TrimSpace(dep.Type), ":"))
		if depType == "" {
			depType = types.GemDependencyRuntime
		}
		spec.Dependencies = append(spec.Dependencies, types.GemDependency{
			Name:         strings.TrimSpace(dep.Name),
			Type:         depType,
			Requirements: dep.Requirement,
		})
	}
	return spec, nil
}

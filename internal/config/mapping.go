package config

import (
	"fmt"

	"bytemomo/sonar/internal/domain"

	"gopkg.in/yaml.v3"
)

// Mapping is a YAML mapping of scalar values that keeps file order.
type Mapping []domain.Entry

func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	entries := make([]domain.Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping entries must be scalars", k.Line)
		}
		entries = append(entries, domain.Entry{Key: k.Value, Value: v.Value})
	}
	*m = entries
	return nil
}

// Entries returns the entries with repeated keys folded.
func (m Mapping) Entries() []domain.Entry {
	return domain.MappingFromEntries("", m).Entries
}

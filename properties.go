package dynamic

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ParseProperties decodes a YAML mapping of property names to values, the
// document form used to seed extension bags from configuration files.
func ParseProperties(content []byte) (map[string]any, error) {
	var properties map[string]any
	if err := yaml.Unmarshal(content, &properties); err != nil {
		return nil, fmt.Errorf("dynamic: parsing properties: %w", err)
	}
	if properties == nil {
		properties = map[string]any{}
	}
	return properties, nil
}

// LoadProperties reads and decodes the YAML properties file at path.
func LoadProperties(path string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dynamic: reading properties file: %w", err)
	}
	return ParseProperties(content)
}

// SeedYAML adds every property in the YAML document to the bag. Entries are
// applied in name order so repeated seeds produce the same insertion order.
func (b *ExtensionBag) SeedYAML(content []byte) error {
	properties, err := ParseProperties(content)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := b.Add(name, properties[name]); err != nil {
			return err
		}
	}
	return nil
}

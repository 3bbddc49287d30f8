package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// categoriesFile is the on-disk shape of the allow-list.
type categoriesFile struct {
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

// LoadCategories reads the category allow-list from a YAML file and
// returns it as an id to label map for the validator. Every submitted
// nomination must reference an id from this map.
func LoadCategories(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	return parseCategories(data)
}

func parseCategories(data []byte) (map[string]string, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("categories file lists no categories")
	}

	categories := make(map[string]string, len(file.Categories))
	for i, entry := range file.Categories {
		if entry.ID == "" {
			return nil, fmt.Errorf("categories[%d]: id must not be empty", i)
		}
		if _, ok := categories[entry.ID]; ok {
			return nil, fmt.Errorf("categories[%d]: duplicate id %q", i, entry.ID)
		}
		label := entry.Label
		if label == "" {
			label = entry.ID
		}
		categories[entry.ID] = label
	}
	return categories, nil
}

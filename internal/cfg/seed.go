package cfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Categories created for an owner on first contact.
var DefaultCategories = []string{
	"Tech",
	"Business",
	"Health",
	"Personal",
	"Uncategorized",
}

type seedFile struct {
	Categories []string `yaml:"categories"`
}

// loadSeedCategories reads a YAML file of the form
//
//	categories:
//	  - Tech
//	  - Finance
//
// The fallback category is appended when the file leaves it out, since
// timed-out captures are filed there.
func loadSeedCategories(path, fallback string) ([]string, error) {
	if path == "" {
		return withFallback(DefaultCategories, fallback), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	names := make([]string, 0, len(seed.Categories))
	for _, name := range seed.Categories {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("seed file %s lists no categories", path)
	}

	return withFallback(names, fallback), nil
}

func withFallback(names []string, fallback string) []string {
	result := append([]string(nil), names...)
	if fallback == "" {
		return result
	}
	for _, name := range result {
		if name == fallback {
			return result
		}
	}
	return append(result, fallback)
}

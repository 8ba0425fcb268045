package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/ngramq/pkg/ngramq/dataset"
	"github.com/cognicore/ngramq/pkg/ngramq/stoplist"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// Set returns the terms lowercased and trimmed, ready for tokenizer matching.
func (s *Stoplist) Set() stoplist.Set {
	return stoplist.Normalize(s.Terms)
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// SaveStoplist writes terms as a stoplist YAML file, sorted and without
// duplicates.
func SaveStoplist(path string, terms []string) error {
	data, err := yaml.Marshal(Stoplist{Terms: stoplist.Normalize(terms).Terms()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ColumnMappings overrides the header synonyms per standard column:
//
//	query: [keyword, search term]
//	cost: [spend, ausgaben]
type ColumnMappings map[string][]string

// LoadColumnMappings reads header synonym overrides from a YAML file.
// Unknown target columns are rejected.
func LoadColumnMappings(path string) (ColumnMappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cm ColumnMappings
	if err := yaml.Unmarshal(data, &cm); err != nil {
		return nil, err
	}

	known := dataset.DefaultMapping()
	for target := range cm {
		if _, ok := known[target]; !ok {
			return nil, fmt.Errorf("column mapping %q: unknown target column", target)
		}
	}
	return cm, nil
}

// Mapping merges the overrides onto the default synonyms.
func (cm ColumnMappings) Mapping() dataset.Mapping {
	return dataset.DefaultMapping().Merge(dataset.Mapping(cm))
}

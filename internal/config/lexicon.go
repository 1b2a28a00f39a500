package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon overrides the built-in aspect keywords and Spanish word list
type Lexicon struct {
	Aspects      map[string][]string `yaml:"aspects"`
	SpanishWords []string            `yaml:"spanish_words"`
}

// LoadLexicon loads a lexicon override from a YAML file
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, err
	}

	return &lex, nil
}

package domain

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary holds the stopword and suffix tables used by the keyword extractor.
type Vocabulary struct {
	Stopwords      []string `yaml:"stopwords" validate:"dive,required"`
	Suffixes       []string `yaml:"suffixes" validate:"dive,required"`
	MinTokenLength int      `yaml:"min_token_length" validate:"gte=1"`
}

// ParseVocabulary decodes and validates a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if err := validator.New().Struct(v); err != nil {
		return nil, fmt.Errorf("validate vocabulary: %w", err)
	}
	return &v, nil
}

// LoadVocabulary reads a vocabulary file. An empty path selects the built-in tables.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// DefaultVocabulary returns the built-in Korean tables.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(err)
	}
	return v
}

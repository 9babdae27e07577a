// Package match is the catalog matching engine: tokenizing item titles,
// ranking likely duplicates, parsing structured queries, building field
// suggestions and sorting/paging result lists.
//
// Everything here is synchronous and free of side effects. Callers pass in a
// snapshot of items they already hold; configuration (vocabulary, field
// order, collation) is fixed at construction.
package match

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary is the curated word list the tokenizer consults.
// It is immutable once built.
type Vocabulary struct {
	stopWords  map[string]struct{}
	supportive map[string]struct{}
}

// vocabularyFile is the on-disk YAML layout.
type vocabularyFile struct {
	StopWords  []string `yaml:"stop_words"`
	Supportive []string `yaml:"supportive"`
}

// NewVocabulary builds a vocabulary from word lists. Entries are trimmed and
// lowercased; blanks are ignored. A word listed as both a stop-word and a
// supportive word is treated as a stop-word.
func NewVocabulary(stopWords, supportive []string) *Vocabulary {
	v := &Vocabulary{
		stopWords:  toSet(stopWords),
		supportive: toSet(supportive),
	}
	for w := range v.stopWords {
		delete(v.supportive, w)
	}
	return v
}

// ParseVocabulary decodes a YAML vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	return NewVocabulary(f.StopWords, f.Supportive), nil
}

// LoadVocabulary reads a YAML vocabulary file from disk.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- operator supplied path
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// DefaultVocabulary returns the vocabulary compiled into the binary.
func DefaultVocabulary() *Vocabulary {
	v, err := ParseVocabulary(defaultVocabularyYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// IsStopWord reports whether w is ignored by the tokenizer.
func (v *Vocabulary) IsStopWord(w string) bool {
	_, ok := v.stopWords[w]
	return ok
}

// IsSupportive reports whether w is a brand/manufacturer word.
func (v *Vocabulary) IsSupportive(w string) bool {
	_, ok := v.supportive[w]
	return ok
}

// Len returns the number of stop-words and supportive words.
func (v *Vocabulary) Len() (stopWords, supportive int) {
	return len(v.stopWords), len(v.supportive)
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

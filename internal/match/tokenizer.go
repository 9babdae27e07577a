package match

import "strings"

// minTokenLen is the shortest token kept.
const minTokenLen = 2

// TokenSet is a tokenized title split into core and supportive words.
// Core and Supportive never share a token. Both keep source order and
// repeated words.
type TokenSet struct {
	Core       []string `json:"core"`
	Supportive []string `json:"supportive"`
}

// Empty reports whether no token survived tokenization.
func (t TokenSet) Empty() bool {
	return len(t.Core) == 0 && len(t.Supportive) == 0
}

// Tokenizer splits free text into normalized tokens using a Vocabulary.
type Tokenizer struct {
	vocab *Vocabulary
}

// NewTokenizer returns a tokenizer bound to vocab. It panics if vocab is nil.
func NewTokenizer(vocab *Vocabulary) *Tokenizer {
	if vocab == nil {
		panic("match: nil vocabulary")
	}
	return &Tokenizer{vocab: vocab}
}

// Vocabulary returns the vocabulary the tokenizer was built with.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Tokenize lowercases text, turns everything outside [a-z0-9] and whitespace
// into a space, splits on whitespace and drops short words and stop-words.
// Remaining words land in Supportive when the vocabulary lists them, in Core
// otherwise.
func (t *Tokenizer) Tokenize(text string) TokenSet {
	var set TokenSet
	for _, word := range Words(text) {
		switch {
		case len(word) < minTokenLen, t.vocab.IsStopWord(word):
		case t.vocab.IsSupportive(word):
			set.Supportive = append(set.Supportive, word)
		default:
			set.Core = append(set.Core, word)
		}
	}
	return set
}

// Words lowercases text, replaces every character other than a-z, 0-9 and
// whitespace with a space and splits on runs of whitespace.
func Words(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}

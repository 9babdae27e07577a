package match

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/figureshelf/figureshelf-server/internal/domain"
)

// TightResultSize is the survivor count at which the ranker stops raising
// its threshold.
const TightResultSize = 2

// RankResult is the outcome of a duplicate search.
type RankResult struct {
	Candidates []Candidate `json:"candidates"`
	// Threshold is the core-match bar that produced Candidates (0 when empty).
	Threshold int `json:"threshold"`
	// Converged is false when no threshold narrowed the set to
	// TightResultSize entries; Candidates then holds the last non-empty
	// (larger) set.
	Converged bool `json:"converged"`
}

// Ranker finds catalog items that look like the same collectible as a
// free-text title.
type Ranker struct {
	tokenizer *Tokenizer
}

// NewRanker returns a ranker. It panics if tokenizer is nil.
func NewRanker(tokenizer *Tokenizer) *Ranker {
	if tokenizer == nil {
		panic("match: nil tokenizer")
	}
	return &Ranker{tokenizer: tokenizer}
}

// Eligible scores every item name against query and keeps the ones sharing
// at least one core token, in input order. It panics on a nil item.
func (r *Ranker) Eligible(query TokenSet, items []*domain.Item) []Candidate {
	var out []Candidate
	for i, item := range items {
		if item == nil {
			panic(fmt.Sprintf("match: nil item at index %d", i))
		}
		core, supportive := Score(query, r.tokenizer.Tokenize(item.Name))
		if core > 0 {
			out = append(out, NewCandidate(item, core, supportive))
		}
	}
	return out
}

// FilterByCore returns the candidates with at least threshold core matches,
// preserving order. A higher threshold never yields more candidates.
func FilterByCore(candidates []Candidate, threshold int) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if c.CoreMatchCount >= threshold {
			out = append(out, c)
		}
	}
	return out
}

// Rank returns the items most likely to duplicate queryText.
//
// Starting at MinCoreMatches, the core-match threshold is raised one step at
// a time until at most TightResultSize items survive or the threshold passes
// the number of core tokens in the query. The last non-empty survivor set is
// returned, highest MatchCount first; equal scores keep input order.
func (r *Ranker) Rank(queryText string, items []*domain.Item) RankResult {
	query := r.tokenizer.Tokenize(queryText)
	if len(query.Core) == 0 {
		return RankResult{Candidates: []Candidate{}, Converged: true}
	}

	eligible := r.Eligible(query, items)

	var best []Candidate
	bestThreshold := 0
	for threshold := MinCoreMatches; threshold <= len(query.Core); threshold++ {
		survivors := FilterByCore(eligible, threshold)
		if len(survivors) > 0 {
			best = survivors
			bestThreshold = threshold
		}
		if len(survivors) <= TightResultSize {
			break
		}
	}

	result := FilterByCore(best, MinCoreMatches)
	slices.SortStableFunc(result, func(a, b Candidate) int {
		return cmp.Compare(b.MatchCount, a.MatchCount)
	})

	if len(result) == 0 {
		return RankResult{Candidates: []Candidate{}, Converged: true}
	}
	return RankResult{
		Candidates: result,
		Threshold:  bestThreshold,
		Converged:  len(result) <= TightResultSize,
	}
}

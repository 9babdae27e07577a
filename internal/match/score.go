package match

import "github.com/figureshelf/figureshelf-server/internal/domain"

// MinCoreMatches is the hard floor: an item sharing fewer core tokens with
// the query is never reported as a duplicate. Supportive matches only count
// once this floor is reached.
const MinCoreMatches = 2

// Candidate is an item scored against a query.
type Candidate struct {
	Item                 *domain.Item `json:"item"`
	CoreMatchCount       int          `json:"core_match_count"`
	SupportiveMatchCount int          `json:"supportive_match_count"`
	MatchCount           int          `json:"match_count"`
}

// NewCandidate scores item and fills in MatchCount.
func NewCandidate(item *domain.Item, core, supportive int) Candidate {
	c := Candidate{Item: item, CoreMatchCount: core, SupportiveMatchCount: supportive}
	c.MatchCount = core
	if core >= MinCoreMatches {
		c.MatchCount += supportive
	}
	return c
}

// Score counts how many query tokens appear in candidate. Each query token is
// checked on its own, so a word repeated in the query counts every time.
// Counts are not normalized by title length.
func Score(query, candidate TokenSet) (core, supportive int) {
	coreSet := lookup(candidate.Core)
	for _, tok := range query.Core {
		if _, ok := coreSet[tok]; ok {
			core++
		}
	}
	supSet := lookup(candidate.Supportive)
	for _, tok := range query.Supportive {
		if _, ok := supSet[tok]; ok {
			supportive++
		}
	}
	return core, supportive
}

func lookup(tokens []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

package catalog

import (
	"fmt"
	"strings"
)

// rankedRecommendations orders recommendation levels best-first for the
// CASE ordinal used in sorting; unset levels rank after all of these.
var rankedRecommendations = []string{
	RecommendationMustRead,
	RecommendationShouldRead,
	RecommendationCanSkip,
	RecommendationIgnore,
}

// rankedRelevance orders relevance levels most-relevant-first; the
// ordinal counts down from len(rankedRelevance), with everything else
// (including not_validated and NULL) at 0.
var rankedRelevance = []string{
	RelevanceHighly,
	RelevanceModerately,
	RelevanceTangentially,
	RelevanceNot,
}

// recommendationRankExpr ranks recommendations 1 (best) through 4, with
// unset rows at 5 so they always sort after ranked rows.
func recommendationRankExpr() string {
	var b strings.Builder
	b.WriteString("CASE recommendation_score")
	for i, level := range rankedRecommendations {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", level, i+1)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(rankedRecommendations)+1)
	return b.String()
}

// relevanceOrdinalExpr maps one topic's relevance column to its ordinal
// (Highly Relevant highest).
func relevanceOrdinalExpr(t Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s_relevance", t)
	for i, level := range rankedRelevance {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", level, len(rankedRelevance)-i)
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// maxRelevanceExpr is the maximum relevance ordinal across the given
// topic set.
func maxRelevanceExpr(topics []Topic) string {
	exprs := make([]string, 0, len(topics))
	for _, t := range topics {
		exprs = append(exprs, relevanceOrdinalExpr(t))
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return "GREATEST(" + strings.Join(exprs, ", ") + ")"
}

// BuildOrderBy compiles the sort key and direction into a total
// ordering expression. Numeric keys place NULLs last regardless of
// direction, and every ordering ends with an id tie-break so equal rows
// have a stable, deterministic order. The expression contains only
// fixed enum literals, no user input.
func BuildOrderBy(p *ListParams) string {
	dir := "ASC"
	if p.SortOrder == SortDesc {
		dir = "DESC"
	}

	switch p.SortBy {
	case SortByHighestHIndex:
		return fmt.Sprintf("highest_h_index %s NULLS LAST, id ASC", dir)
	case SortByAverageHIndex:
		return fmt.Sprintf("average_h_index %s NULLS LAST, id ASC", dir)
	case SortByArxivID:
		return fmt.Sprintf("id %s", dir)
	case SortByTitle:
		return fmt.Sprintf("LOWER(title) %s, id ASC", dir)
	case SortByRecommendation:
		// The rank counts 1=best, so "desc = best first" inverts the
		// comparison on the rank itself.
		rankDir := "DESC"
		if p.SortOrder == SortDesc {
			rankDir = "ASC"
		}
		return fmt.Sprintf(
			"%s %s, highest_h_index DESC NULLS LAST, average_h_index DESC NULLS LAST, %s DESC, id ASC",
			recommendationRankExpr(), rankDir, maxRelevanceExpr(p.EffectiveTopics()),
		)
	case SortByRelevance:
		return fmt.Sprintf(
			"%s %s, %s ASC, highest_h_index DESC NULLS LAST, average_h_index DESC NULLS LAST, id ASC",
			maxRelevanceExpr(p.EffectiveTopics()), dir, recommendationRankExpr(),
		)
	default:
		panic(fmt.Sprintf("catalog: unknown sort key %q", p.SortBy))
	}
}

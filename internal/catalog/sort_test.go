package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildOrderBy_HighestHIndex(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "highest_h_index", "sortOrder": "desc"})
	assert.Equal(t, "highest_h_index DESC NULLS LAST, id ASC", BuildOrderBy(p))

	p = mustParams(t, map[string]string{"sortBy": "highest_h_index", "sortOrder": "asc"})
	assert.Equal(t, "highest_h_index ASC NULLS LAST, id ASC", BuildOrderBy(p))
}

func TestBuildOrderBy_AverageHIndex(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "average_h_index", "sortOrder": "asc"})
	assert.Equal(t, "average_h_index ASC NULLS LAST, id ASC", BuildOrderBy(p))
}

func TestBuildOrderBy_ArxivID(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "arxiv_id", "sortOrder": "desc"})
	assert.Equal(t, "id DESC", BuildOrderBy(p))
}

func TestBuildOrderBy_TitleCaseInsensitive(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "title", "sortOrder": "asc"})
	assert.Equal(t, "LOWER(title) ASC, id ASC", BuildOrderBy(p))
}

func TestBuildOrderBy_RecommendationDescMeansBestFirst(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "recommendation", "sortOrder": "desc"})
	order := BuildOrderBy(p)

	// The rank counts 1=best, so desc inverts into an ascending rank.
	assert.Contains(t, order, "CASE recommendation_score WHEN 'Must Read' THEN 1 WHEN 'Should Read' THEN 2 WHEN 'Can Skip' THEN 3 WHEN 'Ignore' THEN 4 ELSE 5 END ASC")
	assert.Contains(t, order, "highest_h_index DESC NULLS LAST")
	assert.Contains(t, order, "average_h_index DESC NULLS LAST")
	assert.Contains(t, order, "GREATEST(")
	assert.Regexp(t, `id ASC$`, order)
}

func TestBuildOrderBy_RecommendationAsc(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "recommendation", "sortOrder": "asc"})
	assert.Contains(t, BuildOrderBy(p), "ELSE 5 END DESC")
}

func TestBuildOrderBy_RelevanceUsesMaxOrdinal(t *testing.T) {
	p := mustParams(t, map[string]string{"sortBy": "relevance", "sortOrder": "desc"})
	order := BuildOrderBy(p)

	assert.Contains(t, order, "GREATEST(")
	for _, topic := range Topics {
		assert.Contains(t, order, "CASE "+string(topic)+"_relevance WHEN 'Highly Relevant' THEN 4 WHEN 'Moderately Relevant' THEN 3 WHEN 'Tangentially Relevant' THEN 2 WHEN 'Not Relevant' THEN 1 ELSE 0 END")
	}
	assert.Regexp(t, `id ASC$`, order)
}

func TestBuildOrderBy_RelevanceScopedToSelectedTopics(t *testing.T) {
	p := mustParams(t, map[string]string{
		"sortBy":    "relevance",
		"sortOrder": "desc",
		"topics":    "agentic_ai",
	})
	order := BuildOrderBy(p)

	// A single effective topic needs no GREATEST wrapper, and the other
	// topics' columns must not participate.
	assert.NotContains(t, order, "GREATEST")
	assert.Contains(t, order, "agentic_ai_relevance")
	assert.NotContains(t, order, "reinforcement_learning_relevance")
}

func TestBuildOrderBy_RecommendationScopedTopicsInTieBreak(t *testing.T) {
	p := mustParams(t, map[string]string{
		"sortBy": "recommendation",
		"topics": "reasoning_models,inference_time_scaling",
	})
	order := BuildOrderBy(p)

	assert.Contains(t, order, "reasoning_models_relevance")
	assert.Contains(t, order, "inference_time_scaling_relevance")
	assert.NotContains(t, order, "agentic_ai_relevance")
}

func TestBuildOrderBy_NoUserInputInExpression(t *testing.T) {
	// Every compiled ordering is assembled from fixed literals; the raw
	// parameter strings never appear verbatim beyond the known enums.
	for key := range sortKeys {
		for _, order := range []string{"asc", "desc"} {
			p := mustParams(t, map[string]string{"sortBy": key, "sortOrder": order})
			assert.NotEmpty(t, BuildOrderBy(p))
		}
	}
}

// Package catalog implements the paper catalogue core: parameter
// validation, filter and sort compilation, and the Postgres-backed
// query executor that serves the browsing API.
package catalog

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Topic identifies one of the fixed research topics the scoring
// pipeline evaluates every paper against.
type Topic string

const (
	TopicAgenticAI            Topic = "agentic_ai"
	TopicPPO                  Topic = "proximal_policy_optimization"
	TopicReinforcementLearn   Topic = "reinforcement_learning"
	TopicReasoningModels      Topic = "reasoning_models"
	TopicInferenceTimeScaling Topic = "inference_time_scaling"
)

// Topics is the canonical topic ordering. Column lists, scan
// destinations, and compiled SQL all iterate in this order.
var Topics = []Topic{
	TopicAgenticAI,
	TopicPPO,
	TopicReinforcementLearn,
	TopicReasoningModels,
	TopicInferenceTimeScaling,
}

// Database-level enum literals, as written by the scoring pipeline.
const (
	RecommendationMustRead   = "Must Read"
	RecommendationShouldRead = "Should Read"
	RecommendationCanSkip    = "Can Skip"
	RecommendationIgnore     = "Ignore"

	RelevanceHighly       = "Highly Relevant"
	RelevanceModerately   = "Moderately Relevant"
	RelevanceTangentially = "Tangentially Relevant"
	RelevanceNot          = "Not Relevant"
	RelevanceNotValidated = "not_validated"

	ScoringNotStarted        = "not_scored"
	ScoringCompleted         = "completed"
	ScoringFailed            = "failed"
	ScoringNotRelevantEnough = "not_relevant_enough"

	HIndexNotFetched = "not_fetched"
	HIndexCompleted  = "completed"
	HIndexFailed     = "failed"
)

// TopicAssessment is the per-topic triple produced by the embedding and
// LLM-validation stages. Relevance is only set for validated topics.
type TopicAssessment struct {
	Score         *float64 `json:"score"`
	Relevance     *string  `json:"relevance"`
	Justification *string  `json:"justification"`
}

// Score holds one LLM verdict (novelty, impact, or recommendation)
// together with its justification.
type Score struct {
	Level         *string `json:"level"`
	Justification *string `json:"justification"`
}

// AuthorHIndex is one author's Semantic Scholar lookup result.
type AuthorHIndex struct {
	Name       string  `json:"name"`
	HIndex     *int    `json:"h_index"`
	ProfileURL *string `json:"profile_url"`
}

// AuthorMetrics aggregates the h-index lookup across a paper's authors.
type AuthorMetrics struct {
	Status         string         `json:"status"`
	TotalAuthors   *int           `json:"totalAuthors"`
	AuthorsFound   *int           `json:"authorsFound"`
	HighestHIndex  *int           `json:"highestHIndex"`
	AverageHIndex  *float64       `json:"averageHIndex"`
	NotableAuthors *int           `json:"notableAuthors"`
	Authors        []AuthorHIndex `json:"authors"`
}

// Paper is one catalogue record, shaped for the API response.
type Paper struct {
	ID             string                     `json:"id"`
	Title          string                     `json:"title"`
	Authors        []string                   `json:"authors"`
	Categories     []string                   `json:"categories"`
	Abstract       string                     `json:"abstract"`
	PublishedDate  Date                       `json:"publishedDate"`
	ArxivURL       *string                    `json:"arxivUrl"`
	PDFURL         *string                    `json:"pdfUrl"`
	LatexURL       *string                    `json:"latexUrl"`
	Topics         map[Topic]*TopicAssessment `json:"topics"`
	ScoringStatus  string                     `json:"scoringStatus"`
	Summary        *string                    `json:"summary"`
	Novelty        Score                      `json:"novelty"`
	Impact         Score                      `json:"impact"`
	Recommendation Score                      `json:"recommendation"`
	AuthorMetrics  AuthorMetrics              `json:"authorMetrics"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// MarshalJSON renders the date without a time component.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return eris.Wrap(err, "catalog: parse date")
	}
	d.Time = t
	return nil
}

// ErrNotFound reports a lookup for an id with no matching row.
var ErrNotFound = eris.New("paper not found")

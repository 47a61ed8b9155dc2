package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Mode is the tri-state of a filter parameter: unrestricted, explicitly
// empty, or an explicit list of values.
type Mode int

const (
	ModeAll Mode = iota
	ModeClear
	ModeList
)

// Selection is a validated tri-mode filter parameter. Tokens holds the
// user-facing values as submitted; Values holds the database-level
// values they map to (a token may expand to more than one value).
// Both are empty unless Mode is ModeList.
type Selection struct {
	Mode   Mode
	Tokens []string
	Values []string
}

// Range is a validated inclusive numeric range parameter.
type Range struct {
	All      bool
	Min, Max int
}

// SortKey is a validated sortBy value.
type SortKey string

const (
	SortByRecommendation SortKey = "recommendation"
	SortByRelevance      SortKey = "relevance"
	SortByHighestHIndex  SortKey = "highest_h_index"
	SortByAverageHIndex  SortKey = "average_h_index"
	SortByArxivID        SortKey = "arxiv_id"
	SortByTitle          SortKey = "title"
)

// SortOrder is a validated sortOrder value.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams is the fully-validated parameter bundle for a list request.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    SortKey
	SortOrder SortOrder

	// Date is the YYYY-MM-DD filter value; DateAll disables it.
	DateAll bool
	Date    string

	Topics         Selection
	Recommendation Selection
	Impact         Selection
	Novelty        Selection
	Relevance      Selection
	Scoring        Selection
	HIndexStatus   Selection

	HighestHIndexRange Range
	AverageHIndexRange Range
}

// EffectiveTopics is the topic set relevance filtering and sorting
// operate over: the explicit selection when topics is a list, otherwise
// every topic. Topics mode clear also yields every topic here; the
// filter compiler skips relevance entirely in that case, and sorting
// has no empty-set semantics to express, so it falls back to all
// topics by policy.
func (p *ListParams) EffectiveTopics() []Topic {
	if p.Topics.Mode != ModeList {
		return Topics
	}
	ts := make([]Topic, 0, len(p.Topics.Tokens))
	for _, tok := range p.Topics.Tokens {
		ts = append(ts, Topic(tok))
	}
	return ts
}

// ParamError reports the first parameter that failed validation.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// listParamNames is the declared parameter order. The missing-parameter
// check walks this list and reports the first absent one.
var listParamNames = []string{
	"page", "limit", "sortBy", "sortOrder", "date",
	"topics", "recommendation", "impact", "novelty", "relevance",
	"scoring", "h_index_status",
	"highest_h_index_range", "average_h_index_range",
}

var (
	positiveIntRe = regexp.MustCompile(`^[1-9][0-9]*$`)
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	rangeRe       = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// tokenTable maps a tri-mode field's user-facing tokens to the
// database-level values each expands to.
type tokenTable map[string][]string

var topicTokens = tokenTable{
	string(TopicAgenticAI):            {string(TopicAgenticAI)},
	string(TopicPPO):                  {string(TopicPPO)},
	string(TopicReinforcementLearn):   {string(TopicReinforcementLearn)},
	string(TopicReasoningModels):      {string(TopicReasoningModels)},
	string(TopicInferenceTimeScaling): {string(TopicInferenceTimeScaling)},
}

var recommendationTokens = tokenTable{
	"must_read":   {RecommendationMustRead},
	"should_read": {RecommendationShouldRead},
	"can_skip":    {RecommendationCanSkip},
	"ignore":      {RecommendationIgnore},
}

var impactTokens = tokenTable{
	"high":       {"High"},
	"moderate":   {"Moderate"},
	"low":        {"Low"},
	"negligible": {"Negligible"},
}

var noveltyTokens = tokenTable{
	"high":     {"High"},
	"moderate": {"Moderate"},
	"low":      {"Low"},
	"none":     {"None"},
}

var relevanceTokens = tokenTable{
	"highly_relevant":       {RelevanceHighly},
	"moderately_relevant":   {RelevanceModerately},
	"tangentially_relevant": {RelevanceTangentially},
	"not_relevant":          {RelevanceNot},
}

var scoringTokens = tokenTable{
	"not_started":         {ScoringNotStarted},
	"completed":           {ScoringCompleted},
	"not_relevant_enough": {ScoringNotRelevantEnough},
}

// "not_found" deliberately covers both never-fetched and failed
// lookups; the client treats them identically.
var hIndexStatusTokens = tokenTable{
	"found":     {HIndexCompleted},
	"not_found": {HIndexNotFetched, HIndexFailed},
}

var sortKeys = map[string]SortKey{
	"recommendation":  SortByRecommendation,
	"relevance":       SortByRelevance,
	"highest_h_index": SortByHighestHIndex,
	"average_h_index": SortByAverageHIndex,
	"arxiv_id":        SortByArxivID,
	"title":           SortByTitle,
}

// ParseListParams validates the raw query parameters of a list request.
// All fourteen parameters are mandatory; validation stops at the first
// failure and reports the offending parameter. No trimming or coercion
// is applied anywhere: values must match exactly as documented.
func ParseListParams(query url.Values) (*ListParams, *ParamError) {
	for _, name := range listParamNames {
		if _, ok := query[name]; !ok {
			return nil, &ParamError{Param: name, Reason: "parameter is required"}
		}
	}

	p := &ListParams{}

	page := query.Get("page")
	if !positiveIntRe.MatchString(page) {
		return nil, &ParamError{Param: "page", Reason: "must be a positive integer"}
	}
	n, err := strconv.Atoi(page)
	if err != nil {
		return nil, &ParamError{Param: "page", Reason: "must be a positive integer"}
	}
	p.Page = n

	limit := query.Get("limit")
	if !positiveIntRe.MatchString(limit) {
		return nil, &ParamError{Param: "limit", Reason: "must be an integer between 1 and 100"}
	}
	n, err = strconv.Atoi(limit)
	if err != nil || n < 1 || n > 100 {
		return nil, &ParamError{Param: "limit", Reason: "must be an integer between 1 and 100"}
	}
	p.Limit = n

	key, ok := sortKeys[query.Get("sortBy")]
	if !ok {
		return nil, &ParamError{Param: "sortBy", Reason: "must be one of: recommendation, relevance, highest_h_index, average_h_index, arxiv_id, title"}
	}
	p.SortBy = key

	switch query.Get("sortOrder") {
	case "asc":
		p.SortOrder = SortAsc
	case "desc":
		p.SortOrder = SortDesc
	default:
		return nil, &ParamError{Param: "sortOrder", Reason: `must be "asc" or "desc"`}
	}

	date := query.Get("date")
	switch {
	case date == "all":
		p.DateAll = true
	case isoDateRe.MatchString(date):
		p.Date = date
	default:
		return nil, &ParamError{Param: "date", Reason: `must be "all" or a date in YYYY-MM-DD format`}
	}

	triMode := []struct {
		name   string
		tokens tokenTable
		dst    *Selection
	}{
		{"topics", topicTokens, &p.Topics},
		{"recommendation", recommendationTokens, &p.Recommendation},
		{"impact", impactTokens, &p.Impact},
		{"novelty", noveltyTokens, &p.Novelty},
		{"relevance", relevanceTokens, &p.Relevance},
		{"scoring", scoringTokens, &p.Scoring},
		{"h_index_status", hIndexStatusTokens, &p.HIndexStatus},
	}
	for _, f := range triMode {
		sel, perr := parseSelection(f.name, query.Get(f.name), f.tokens)
		if perr != nil {
			return nil, perr
		}
		*f.dst = sel
	}

	hi, perr := parseRange("highest_h_index_range", query.Get("highest_h_index_range"))
	if perr != nil {
		return nil, perr
	}
	p.HighestHIndexRange = hi

	avg, perr := parseRange("average_h_index_range", query.Get("average_h_index_range"))
	if perr != nil {
		return nil, perr
	}
	p.AverageHIndexRange = avg

	return p, nil
}

func parseSelection(name, raw string, tokens tokenTable) (Selection, *ParamError) {
	switch raw {
	case "all":
		return Selection{Mode: ModeAll}, nil
	case "clear":
		return Selection{Mode: ModeClear}, nil
	case "":
		return Selection{}, &ParamError{Param: name, Reason: "value must not be empty"}
	}

	parts := strings.Split(raw, ",")
	sel := Selection{Mode: ModeList}
	for _, part := range parts {
		if part == "" {
			return Selection{}, &ParamError{Param: name, Reason: "list must not contain empty values"}
		}
		values, ok := tokens[part]
		if !ok {
			return Selection{}, &ParamError{Param: name, Reason: fmt.Sprintf("unknown value %q", part)}
		}
		sel.Tokens = append(sel.Tokens, part)
		sel.Values = append(sel.Values, values...)
	}
	return sel, nil
}

func parseRange(name, raw string) (Range, *ParamError) {
	if raw == "all" {
		return Range{All: true}, nil
	}
	m := rangeRe.FindStringSubmatch(raw)
	if m == nil {
		return Range{}, &ParamError{Param: name, Reason: `must be "all" or "min-max" with non-negative integers`}
	}
	lo, err := strconv.Atoi(m[1])
	if err != nil {
		return Range{}, &ParamError{Param: name, Reason: "min is out of range"}
	}
	hi, err := strconv.Atoi(m[2])
	if err != nil {
		return Range{}, &ParamError{Param: name, Reason: "max is out of range"}
	}
	if lo > hi {
		return Range{}, &ParamError{Param: name, Reason: "min must not exceed max"}
	}
	return Range{Min: lo, Max: hi}, nil
}

package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// CondKind tags the variants of the filter condition IR.
type CondKind int

const (
	// CondEq matches a column against a single bound value.
	CondEq CondKind = iota
	// CondIn matches a column against a bound value set.
	CondIn
	// CondRange matches a column against an inclusive bound range.
	// Null values never match.
	CondRange
	// CondNone never matches. Produced by mode=clear: the user asked
	// for none of the dimension's values, which is not the same as no
	// restriction.
	CondNone
	// CondAnyTopicIn matches when any topic in the set has its
	// relevance column in the bound value set.
	CondAnyTopicIn
)

// Cond is one column-level condition of a compiled filter.
type Cond struct {
	Kind   CondKind
	Column string
	Value  any
	Values []string
	Topics []Topic
	Min    int
	Max    int
}

// Filter is a conjunctive set of conditions over the papers table.
type Filter struct {
	Conds []Cond
}

// BuildFilter translates a validated parameter bundle into the
// condition set the executor applies. Dimensions in mode=all contribute
// nothing; mode=clear contributes a never-match condition.
func BuildFilter(p *ListParams) Filter {
	var f Filter

	if !p.DateAll {
		f.Conds = append(f.Conds, Cond{Kind: CondEq, Column: "published_date", Value: p.Date})
	}

	membership := []struct {
		column string
		sel    Selection
	}{
		{"llm_score_status", p.Scoring},
		{"recommendation_score", p.Recommendation},
		{"impact_score", p.Impact},
		{"novelty_score", p.Novelty},
		{"h_index_status", p.HIndexStatus},
	}
	for _, m := range membership {
		switch m.sel.Mode {
		case ModeAll:
		case ModeClear:
			f.Conds = append(f.Conds, Cond{Kind: CondNone, Column: m.column})
		case ModeList:
			f.Conds = append(f.Conds, Cond{Kind: CondIn, Column: m.column, Values: m.sel.Values})
		}
	}

	if !p.HighestHIndexRange.All {
		f.Conds = append(f.Conds, Cond{
			Kind: CondRange, Column: "highest_h_index",
			Min: p.HighestHIndexRange.Min, Max: p.HighestHIndexRange.Max,
		})
	}
	if !p.AverageHIndexRange.All {
		f.Conds = append(f.Conds, Cond{
			Kind: CondRange, Column: "average_h_index",
			Min: p.AverageHIndexRange.Min, Max: p.AverageHIndexRange.Max,
		})
	}

	// Relevance applies per topic across the effective topic set,
	// any-match. Topics mode clear opts out of topic-based reasoning
	// altogether, so relevance becomes a no-op there.
	if p.Relevance.Mode != ModeAll && p.Topics.Mode != ModeClear {
		if p.Relevance.Mode == ModeClear {
			f.Conds = append(f.Conds, Cond{Kind: CondNone, Column: "relevance"})
		} else {
			f.Conds = append(f.Conds, Cond{
				Kind:   CondAnyTopicIn,
				Topics: p.EffectiveTopics(),
				Values: p.Relevance.Values,
			})
		}
	}

	return f
}

// DateFilter is the filter reduced to only the date dimension, used by
// the auxiliary metadata reads.
func DateFilter(p *ListParams) Filter {
	var f Filter
	if !p.DateAll {
		f.Conds = append(f.Conds, Cond{Kind: CondEq, Column: "published_date", Value: p.Date})
	}
	return f
}

// argList numbers bound parameters sequentially, continuing from a
// caller-supplied offset so compiled fragments can be appended to a
// statement that already has placeholders.
type argList struct {
	n    int
	args []any
}

func (a *argList) add(v any) string {
	a.n++
	a.args = append(a.args, v)
	return "$" + strconv.Itoa(a.n)
}

// Compile renders the filter as a SQL fragment with numbered
// placeholders starting after offset, plus the bound arguments. The
// fragment is empty when no condition applies. Values are always bound,
// never interpolated.
func (f Filter) Compile(offset int) (string, []any) {
	if len(f.Conds) == 0 {
		return "", nil
	}
	al := &argList{n: offset}
	parts := make([]string, 0, len(f.Conds))
	for _, c := range f.Conds {
		parts = append(parts, compileCond(c, al))
	}
	return strings.Join(parts, " AND "), al.args
}

func compileCond(c Cond, al *argList) string {
	switch c.Kind {
	case CondEq:
		return fmt.Sprintf("%s = %s", c.Column, al.add(c.Value))
	case CondIn:
		return fmt.Sprintf("%s IN (%s)", c.Column, placeholders(c.Values, al))
	case CondRange:
		return fmt.Sprintf("%s BETWEEN %s AND %s", c.Column, al.add(c.Min), al.add(c.Max))
	case CondNone:
		return "FALSE"
	case CondAnyTopicIn:
		alts := make([]string, 0, len(c.Topics))
		for _, t := range c.Topics {
			alts = append(alts, fmt.Sprintf("%s_relevance IN (%s)", t, placeholders(c.Values, al)))
		}
		return "(" + strings.Join(alts, " OR ") + ")"
	default:
		panic(fmt.Sprintf("catalog: unknown condition kind %d", c.Kind))
	}
}

func placeholders(values []string, al *argList) string {
	ps := make([]string, 0, len(values))
	for _, v := range values {
		ps = append(ps, al.add(v))
	}
	return strings.Join(ps, ", ")
}

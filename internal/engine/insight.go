package engine

import "strings"

const (
	FallbackSummary        = "Perfil equilibrado, sem alertas relevantes."
	FallbackRecommendation = "Manter acompanhamento regular e reavaliar em 30 dias."
)

// Comparison is a threshold operator
type Comparison string

const (
	CmpGT  Comparison = "gt"
	CmpGTE Comparison = "gte"
	CmpLT  Comparison = "lt"
	CmpLTE Comparison = "lte"
)

// Condition compares one metric against a threshold
type Condition struct {
	Metric    RiskKey    `json:"metric" yaml:"metric"`
	Op        Comparison `json:"op" yaml:"op"`
	Threshold int        `json:"threshold" yaml:"threshold"`
}

// Holds reports whether r satisfies the condition. Unknown metrics or
// operators never hold
func (c Condition) Holds(r Risks) bool {
	v, ok := r.Get(c.Metric)
	if !ok {
		return false
	}
	return compare(c.Op, float64(v), float64(c.Threshold))
}

func compare(op Comparison, v, threshold float64) bool {
	switch op {
	case CmpGT:
		return v > threshold
	case CmpGTE:
		return v >= threshold
	case CmpLT:
		return v < threshold
	case CmpLTE:
		return v <= threshold
	}
	return false
}

// SummaryRule contributes Text to the summary when its condition holds
type SummaryRule struct {
	Condition `yaml:",inline"`
	Text      string `json:"text" yaml:"text"`
}

// RecommendationRule contributes Text to the recommendations when its
// condition holds
type RecommendationRule struct {
	Condition `yaml:",inline"`
	Text      string `json:"text" yaml:"text"`
}

// Insight is the result of a finished session
type Insight struct {
	Summary         string   `json:"summary"`
	Risks           Risks    `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// BuildSummary joins the text of every matching rule with a single space
func BuildSummary(r Risks, rules []SummaryRule) string {
	var parts []string
	for _, rule := range rules {
		if rule.Text != "" && rule.Holds(r) {
			parts = append(parts, rule.Text)
		}
	}
	if len(parts) == 0 {
		return FallbackSummary
	}
	return strings.Join(parts, " ")
}

// BuildRecommendations collects matching rule texts in rule order
func BuildRecommendations(r Risks, rules []RecommendationRule) []string {
	var out []string
	for _, rule := range rules {
		if rule.Text != "" && rule.Holds(r) {
			out = append(out, rule.Text)
		}
	}
	if len(out) == 0 {
		return []string{FallbackRecommendation}
	}
	return out
}

// Compose runs scoring, aggregation and text rules over a finished answer
// set. Answers to deepening questions score like regular questions
func Compose(schema Schema, answers AnswerSet, rules Rules) Insight {
	scoring := schema
	if len(rules.Deepening) > 0 {
		scoring.Questions = make([]Question, 0, len(schema.Questions)+len(rules.Deepening))
		scoring.Questions = append(scoring.Questions, schema.Questions...)
		idx := schema.index()
		for _, d := range rules.Deepening {
			if _, inSchema := idx[d.Question.ID]; !inSchema {
				scoring.Questions = append(scoring.Questions, d.Question)
			}
		}
	}
	risks := ComputeRisks(CollectScores(scoring, answers), rules.Risks)
	return Insight{
		Summary:         BuildSummary(risks, rules.Summary),
		Risks:           risks,
		Recommendations: BuildRecommendations(risks, rules.Recommendations),
	}
}

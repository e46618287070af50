package engine

import (
	"slices"
	"strconv"
	"strings"
)

// TriggerOp is the comparison a deepening trigger applies
type TriggerOp string

const (
	TriggerIn  TriggerOp = "in"
	TriggerGTE TriggerOp = "gte"
	TriggerGT  TriggerOp = "gt"
	TriggerLTE TriggerOp = "lte"
	TriggerLT  TriggerOp = "lt"
)

// Trigger matches answered questions selected by Tag or, when set, by
// QuestionID
type Trigger struct {
	Tag        string    `json:"tag,omitempty" yaml:"tag,omitempty"`
	QuestionID string    `json:"questionId,omitempty" yaml:"questionId,omitempty"`
	Op         TriggerOp `json:"op" yaml:"op"`
	Values     []string  `json:"values,omitempty" yaml:"values,omitempty"`
	Threshold  float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// DeepeningRule offers Question when any trigger matches
type DeepeningRule struct {
	Tag      string    `json:"tag" yaml:"tag"`
	Triggers []Trigger `json:"triggers" yaml:"triggers"`
	Question Question  `json:"question" yaml:"question"`
}

func (t Trigger) selects(q Question) bool {
	if t.QuestionID != "" {
		return q.ID == t.QuestionID
	}
	return t.Tag != "" && q.HasTag(t.Tag)
}

// Match reports whether any answered question selected by t satisfies it
func (t Trigger) Match(schema Schema, answers AnswerSet) bool {
	for _, q := range schema.Questions {
		if !t.selects(q) || !answers.Answered(q.ID) {
			continue
		}
		if t.matchValue(answers[q.ID]) {
			return true
		}
	}
	return false
}

func (t Trigger) matchValue(a AnswerValue) bool {
	if t.Op == TriggerIn {
		return matchesAny(a, t.Values)
	}
	var n float64
	switch v := a.(type) {
	case Number:
		n = float64(v)
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return false
		}
		n = f
	default:
		return false
	}
	switch t.Op {
	case TriggerGTE:
		return n >= t.Threshold
	case TriggerGT:
		return n > t.Threshold
	case TriggerLTE:
		return n <= t.Threshold
	case TriggerLT:
		return n < t.Threshold
	}
	return false
}

// Fires reports whether the rule should offer its question now
func (r DeepeningRule) Fires(schema Schema, answers AnswerSet) bool {
	if r.Question.ID == "" || answers.Answered(r.Question.ID) {
		return false
	}
	return slices.ContainsFunc(r.Triggers, func(t Trigger) bool {
		return t.Match(schema, answers)
	})
}

// DefaultDeepeningRules returns the stock table in priority order
func DefaultDeepeningRules() []DeepeningRule {
	return []DeepeningRule{
		{
			Tag: "stress",
			Triggers: []Trigger{
				{Tag: "stress", Op: TriggerIn, Values: []string{"Frequentemente", "Sempre"}},
				{Tag: "stress", Op: TriggerGTE, Threshold: 7},
			},
			Question: Question{
				ID:   "deep_stress_level",
				Text: "De 1 a 10, qual o seu nível de estresse na maior parte dos dias?",
				Type: TypeNumber,
				Tags: []string{"stress"},
			},
		},
		{
			Tag: "sleep",
			Triggers: []Trigger{
				{Tag: "sleep", Op: TriggerLTE, Threshold: 5},
				{Tag: "sleep_hours", Op: TriggerLT, Threshold: 6},
			},
			Question: Question{
				ID:   "deep_sleep_routine",
				Text: "Como é a sua rotina nas duas horas antes de dormir?",
				Type: TypeText,
				Tags: []string{"sleep"},
			},
		},
		{
			Tag: "food_emotional",
			Triggers: []Trigger{
				{Tag: "food_emotional", Op: TriggerIn, Values: []string{"Frequentemente", "Às vezes"}},
			},
			Question: Question{
				ID:      "deep_food_triggers",
				Text:    "Em quais situações você costuma comer por emoção?",
				Type:    TypeMultiple,
				Options: []string{"Estresse", "Ansiedade", "Tédio", "Tristeza", "Cansaço"},
				Tags:    []string{"food_emotional"},
			},
		},
	}
}

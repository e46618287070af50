package engine

import "slices"

// Visibility evaluates showWhen and conditional rules for one schema. Build it
// once per call with NewVisibility; lookups are then constant time
type Visibility struct {
	schema  Schema
	index   map[string]int
	ruleFor map[string]int
}

// NewVisibility indexes schema. The first rule naming a question in
// ThenShow is the only one consulted for it
func NewVisibility(schema Schema) Visibility {
	ruleFor := make(map[string]int)
	for i, rule := range schema.ConditionalLogic {
		for _, id := range rule.ThenShow {
			if _, ok := ruleFor[id]; !ok {
				ruleFor[id] = i
			}
		}
	}
	return Visibility{schema: schema, index: schema.index(), ruleFor: ruleFor}
}

// Visible reports whether q should be presented given answers
func (v Visibility) Visible(q Question, answers AnswerSet) bool {
	if sw := q.ShowWhen; sw != nil {
		if !v.known(sw.QuestionID) || !answers.Answered(sw.QuestionID) {
			return false
		}
		a := answers[sw.QuestionID]
		if list, isList := valueList(sw.Value); isList || sw.Operator == OpIn {
			if !isList {
				list = []string{valueString(sw.Value)}
			}
			if !matchesAny(a, list) {
				return false
			}
		} else if Stringify(a) != valueString(sw.Value) {
			return false
		}
	}
	if i, ok := v.ruleFor[q.ID]; ok {
		rule := v.schema.ConditionalLogic[i]
		if !v.known(rule.IfQuestion) || !answers.Answered(rule.IfQuestion) {
			return false
		}
		a := answers[rule.IfQuestion]
		if list, isList := valueList(rule.IfValue); isList {
			return matchesAny(a, list)
		}
		return Stringify(a) == valueString(rule.IfValue)
	}
	return true
}

// Questions returns the visible questions in declared order
func (v Visibility) Questions(answers AnswerSet) []Question {
	var out []Question
	for _, q := range v.schema.Questions {
		if v.Visible(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

func (v Visibility) known(id string) bool {
	_, ok := v.index[id]
	return ok
}

// matchesAny reports whether the answer, or any element of a multiple
// choice answer, is in list
func matchesAny(a AnswerValue, list []string) bool {
	if mc, ok := a.(MultiChoice); ok {
		for _, c := range mc {
			if slices.Contains(list, c) {
				return true
			}
		}
		return false
	}
	return slices.Contains(list, Stringify(a))
}

package engine

import (
	"fmt"
	"slices"
)

// QuestionType defines how a question is answered
type QuestionType string

const (
	TypeText     QuestionType = "text"
	TypeNumber   QuestionType = "number"
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
)

// Operator compares a ShowWhen value against an answer
type Operator string

const (
	OpEq Operator = "eq"
	OpIn Operator = "in"
)

// ShowWhen gates a single question on another question's answer
type ShowWhen struct {
	QuestionID string   `json:"questionId" bson:"questionId" yaml:"questionId"`
	Operator   Operator `json:"operator" bson:"operator" yaml:"operator"`
	Value      any      `json:"value" bson:"value" yaml:"value"`
}

// Question is one entry of a template
type Question struct {
	ID       string       `json:"id" bson:"id" yaml:"id"`
	Text     string       `json:"text" bson:"text" yaml:"text"`
	Type     QuestionType `json:"type" bson:"type" yaml:"type"`
	Options  []string     `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"`
	Required bool         `json:"required" bson:"required" yaml:"required"`
	Tags     []string     `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags,omitempty"`
	ShowWhen *ShowWhen    `json:"showWhen,omitempty" bson:"showWhen,omitempty" yaml:"showWhen,omitempty"`
}

// HasTag reports whether the question carries tag
func (q Question) HasTag(tag string) bool {
	return slices.Contains(q.Tags, tag)
}

// ConditionalRule shows ThenShow questions when IfQuestion's answer matches
// IfValue. IfValue is either a string or a list of strings
type ConditionalRule struct {
	IfQuestion string   `json:"ifQuestion" bson:"ifQuestion" yaml:"ifQuestion"`
	IfValue    any      `json:"ifValue" bson:"ifValue" yaml:"ifValue"`
	ThenShow   []string `json:"thenShow" bson:"thenShow" yaml:"thenShow"`
}

// Schema is the questionnaire definition. Question order is the traversal order
type Schema struct {
	Questions        []Question        `json:"questions" bson:"questions" yaml:"questions"`
	ConditionalLogic []ConditionalRule `json:"conditionalLogic,omitempty" bson:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
	Tags             []string          `json:"tags,omitempty" bson:"tags,omitempty" yaml:"tags,omitempty"`
}

// Question looks up a question by id
func (s Schema) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (s Schema) index() map[string]int {
	idx := make(map[string]int, len(s.Questions))
	for i, q := range s.Questions {
		if _, dup := idx[q.ID]; !dup {
			idx[q.ID] = i
		}
	}
	return idx
}

// Lint reports structural problems that the engine tolerates at runtime:
// dangling references, duplicate ids, choice questions without options and
// questions targeted by more than one conditional rule. Only the first
// targeting rule is ever evaluated, so later ones are silently ignored
func (s Schema) Lint() []string {
	var warnings []string
	seen := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if q.ID == "" {
			warnings = append(warnings, "question with empty id")
			continue
		}
		if seen[q.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = true
		if (q.Type == TypeSingle || q.Type == TypeMultiple) && len(q.Options) == 0 {
			warnings = append(warnings, fmt.Sprintf("question %q of type %s has no options", q.ID, q.Type))
		}
	}
	for _, q := range s.Questions {
		if q.ShowWhen != nil && !seen[q.ShowWhen.QuestionID] {
			warnings = append(warnings, fmt.Sprintf("question %q showWhen references unknown question %q", q.ID, q.ShowWhen.QuestionID))
		}
	}

	targeted := make(map[string]int)
	for i, rule := range s.ConditionalLogic {
		if !seen[rule.IfQuestion] {
			warnings = append(warnings, fmt.Sprintf("conditional rule %d references unknown question %q", i, rule.IfQuestion))
		}
		for _, id := range rule.ThenShow {
			if !seen[id] {
				warnings = append(warnings, fmt.Sprintf("conditional rule %d shows unknown question %q", i, id))
			}
			if first, ok := targeted[id]; ok {
				warnings = append(warnings, fmt.Sprintf("question %q is targeted by rules %d and %d; only rule %d applies", id, first, i, first))
				continue
			}
			targeted[id] = i
		}
	}
	return warnings
}

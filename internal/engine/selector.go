package engine

// Reason explains a selector decision
type Reason string

const (
	ReasonConditional Reason = "conditional"
	ReasonDeepen      Reason = "heuristic_deepen"
	ReasonCompleted   Reason = "completed"
)

// Selection is the selector output for one answer set
type Selection struct {
	NextQuestion      *Question `json:"nextQuestion"`
	Reason            Reason    `json:"reason"`
	CompletionPercent int       `json:"completionPercent"`
}

// Done reports whether no question remains
func (s Selection) Done() bool {
	return s.NextQuestion == nil
}

// Select picks the next question: the first visible unanswered question in
// declared order, then the first firing deepening rule whose question is not
// part of the schema, otherwise nothing
func Select(schema Schema, answers AnswerSet, deepening []DeepeningRule) Selection {
	vis := NewVisibility(schema)
	visible := vis.Questions(answers)
	sel := Selection{
		Reason:            ReasonCompleted,
		CompletionPercent: completion(visible, answers),
	}

	for _, q := range visible {
		if !answers.Answered(q.ID) {
			next := q
			sel.NextQuestion = &next
			sel.Reason = ReasonConditional
			return sel
		}
	}

	for _, rule := range deepening {
		if vis.known(rule.Question.ID) {
			continue
		}
		if rule.Fires(schema, answers) {
			next := rule.Question
			sel.NextQuestion = &next
			sel.Reason = ReasonDeepen
			return sel
		}
	}
	return sel
}

// CompletionPercent is the share of currently visible questions that are
// answered, 100 when nothing is visible
func CompletionPercent(schema Schema, answers AnswerSet) int {
	return completion(NewVisibility(schema).Questions(answers), answers)
}

func completion(visible []Question, answers AnswerSet) int {
	if len(visible) == 0 {
		return 100
	}
	answered := 0
	for _, q := range visible {
		if answers.Answered(q.ID) {
			answered++
		}
	}
	return round(float64(answered) / float64(len(visible)) * 100)
}

package engine

// TagScores holds normalized scores per tag in question order
type TagScores map[string][]int

// CollectScores scores every answered, tagged question and appends the score
// to each of its tags
func CollectScores(schema Schema, answers AnswerSet) TagScores {
	scores := make(TagScores)
	for _, q := range schema.Questions {
		if len(q.Tags) == 0 || !answers.Answered(q.ID) {
			continue
		}
		score, ok := ScoreAnswer(q, answers[q.ID])
		if !ok {
			continue
		}
		for _, tag := range q.Tags {
			scores[tag] = append(scores[tag], score)
		}
	}
	return scores
}

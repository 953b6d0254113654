// Package verify grades a claimant's answers to the challenge questions a
// found-item poster set, producing a 0-100 confidence score.
package verify

import (
	"strings"

	"github.com/retracehq/retrace/internal/models"
)

// Scoring constants. The length bonus is a heuristic proxy for answer
// quality kept for compatibility with existing scores; revisit the
// thresholds before leaning on them contractually.
const (
	questionWeight   = 50
	noQuestionsScore = 20

	lengthBonus          = 10
	lengthBonusThreshold = 10
	lengthExtraThreshold = 20

	// MaxConfidence is assigned to sighting reports on lost items, which
	// bypass grading entirely: a finder has nothing to prove.
	MaxConfidence = 100
)

// Grade scores submitted answers against an item's challenge questions.
// Each answer is matched to a question by exact question text; unmatched
// answers are marked incorrect and contribute nothing. An answer is correct
// when, after trimming and case-folding, it equals the expected answer or
// contains it as a substring.
func Grade(questions []models.Question, answers []models.Answer) (int, []models.GradedAnswer) {
	results := make([]models.GradedAnswer, 0, len(answers))
	correct := 0
	totalLen := 0

	for _, ans := range answers {
		totalLen += len(ans.Answer)

		isCorrect := false
		for _, q := range questions {
			if q.Question != ans.Question {
				continue
			}
			if answerMatches(q.Answer, ans.Answer) {
				isCorrect = true
				correct++
			}
			break
		}
		results = append(results, models.GradedAnswer{
			Question: ans.Question,
			Answer:   ans.Answer,
			Correct:  isCorrect,
		})
	}

	var score float64
	if len(questions) > 0 {
		score = float64(correct) / float64(len(questions)) * questionWeight
	} else {
		// No quiz to grade against: neutral floor.
		score = noQuestionsScore
	}

	if len(answers) > 0 {
		mean := float64(totalLen) / float64(len(answers))
		if mean > lengthBonusThreshold {
			score += lengthBonus
		}
		if mean > lengthExtraThreshold {
			score += lengthBonus
		}
	}

	return clamp(int(score + 0.5)), results
}

func answerMatches(expected, provided string) bool {
	e := strings.ToLower(strings.TrimSpace(expected))
	p := strings.ToLower(strings.TrimSpace(provided))
	if e == "" {
		return false
	}
	return e == p || strings.Contains(p, e)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

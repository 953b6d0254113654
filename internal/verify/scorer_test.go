package verify

import (
	"testing"

	"github.com/retracehq/retrace/internal/models"
)

func TestGrade_SubstringAnswerCorrect(t *testing.T) {
	questions := []models.Question{{Question: "color of case?", Answer: "blue"}}
	answers := []models.Answer{{Question: "color of case?", Answer: "it was dark blue"}}

	score, results := Grade(questions, answers)

	if len(results) != 1 || !results[0].Correct {
		t.Fatalf("results = %+v, want one correct answer", results)
	}
	// 1/1 * 50 base, mean length 16 > 10 gives +10.
	if score != 60 {
		t.Errorf("score = %d, want 60", score)
	}
}

func TestGrade_ExactAnswerCaseFolded(t *testing.T) {
	questions := []models.Question{{Question: "brand?", Answer: "Samsung"}}
	answers := []models.Answer{{Question: "brand?", Answer: "  SAMSUNG "}}

	score, results := Grade(questions, answers)
	if !results[0].Correct {
		t.Error("trimmed case-folded answer should be correct")
	}
	if score != 50 {
		t.Errorf("score = %d, want 50 (no length bonus)", score)
	}
}

func TestGrade_UnknownQuestionIncorrect(t *testing.T) {
	questions := []models.Question{{Question: "color?", Answer: "red"}}
	answers := []models.Answer{{Question: "what brand?", Answer: "red"}}

	score, results := Grade(questions, answers)
	if results[0].Correct {
		t.Error("answer to an unknown question must be incorrect")
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestGrade_NoQuestionsNeutralFloor(t *testing.T) {
	score, results := Grade(nil, nil)
	if score != 20 {
		t.Errorf("score = %d, want 20", score)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want empty", results)
	}
}

func TestGrade_NoQuestionsWithVerboseAnswers(t *testing.T) {
	answers := []models.Answer{
		{Question: "anything", Answer: "a very long descriptive answer about the item"},
	}
	score, _ := Grade(nil, answers)
	// 20 floor + 10 + 10 for mean length past both thresholds.
	if score != 40 {
		t.Errorf("score = %d, want 40", score)
	}
}

func TestGrade_PartialCredit(t *testing.T) {
	questions := []models.Question{
		{Question: "color?", Answer: "black"},
		{Question: "brand?", Answer: "sony"},
		{Question: "lock screen?", Answer: "dog photo"},
	}
	answers := []models.Answer{
		{Question: "color?", Answer: "black"},
		{Question: "brand?", Answer: "lg"},
	}

	score, results := Grade(questions, answers)
	if !results[0].Correct || results[1].Correct {
		t.Fatalf("results = %+v", results)
	}
	// 1/3 * 50 = 16.67 rounded to 17; mean answer length is short.
	if score != 17 {
		t.Errorf("score = %d, want 17", score)
	}
}

func TestGrade_WithinBounds(t *testing.T) {
	questions := []models.Question{{Question: "q", Answer: "a"}}
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	answers := []models.Answer{{Question: "q", Answer: string(long)}}

	score, _ := Grade(questions, answers)
	if score < 0 || score > 100 {
		t.Errorf("score = %d, want within [0, 100]", score)
	}
	// 50 base + 20 bonus.
	if score != 70 {
		t.Errorf("score = %d, want 70", score)
	}
}

func TestGrade_EmptyExpectedNeverMatches(t *testing.T) {
	questions := []models.Question{{Question: "q?", Answer: ""}}
	answers := []models.Answer{{Question: "q?", Answer: "anything"}}

	_, results := Grade(questions, answers)
	if results[0].Correct {
		t.Error("empty expected answer must not match")
	}
}

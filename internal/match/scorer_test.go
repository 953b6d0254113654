package match

import (
	"testing"
	"time"

	"github.com/retracehq/retrace/internal/models"
)

func testScorer() *Scorer {
	aliases := NewAliasProvider(NewAliasIndex(DefaultAliasGroups))
	return NewScorer(DefaultWeights(), aliases)
}

func testItem(itemType, category, title, city string, created time.Time) *models.Item {
	return &models.Item{
		Type:      itemType,
		Category:  category,
		Title:     title,
		Location:  models.Location{City: city},
		CreatedAt: created,
	}
}

func TestScore_HighConfidencePair(t *testing.T) {
	s := testScorer()
	now := time.Now()

	a := testItem(models.TypeLost, "Mobile", "Lost iPhone 13", "Pune", now)
	a.Description = "black iphone with cracked screen"
	b := testItem(models.TypeFound, "phone", "iphone found near station", "Pune", now)

	score := s.Score(a, b)
	if score < 0.60 {
		t.Errorf("score = %.2f, want >= 0.60", score)
	}
}

func TestScore_Symmetric(t *testing.T) {
	s := testScorer()
	now := time.Now()

	pairs := []struct {
		name string
		a, b *models.Item
	}{
		{
			name: "identical categories",
			a:    testItem(models.TypeLost, "Wallet", "brown leather wallet", "Mumbai", now),
			b:    testItem(models.TypeFound, "Wallet", "wallet with cards", "Mumbai", now),
		},
		{
			name: "asymmetric keyword subsumption",
			a:    testItem(models.TypeLost, "Mobile", "phone", "Pune", now),
			b:    testItem(models.TypeFound, "Mobile", "iphone telephone", "Pune", now),
		},
		{
			name: "one side empty",
			a:    testItem(models.TypeLost, "", "", "", now),
			b:    testItem(models.TypeFound, "Keys", "car keys on keychain", "Delhi", now),
		},
	}

	for _, tc := range pairs {
		t.Run(tc.name, func(t *testing.T) {
			ab := s.Score(tc.a, tc.b)
			ba := s.Score(tc.b, tc.a)
			if ab != ba {
				t.Errorf("score(a,b) = %.4f but score(b,a) = %.4f", ab, ba)
			}
		})
	}
}

func TestScore_WithinRange(t *testing.T) {
	s := testScorer()
	now := time.Now()

	a := testItem(models.TypeLost, "Mobile", "lost iphone smartphone mobile", "Pune", now)
	a.Description = "iphone smartphone mobile cellphone android"
	a.Keywords = []string{"iphone", "smartphone"}
	b := testItem(models.TypeFound, "Mobile", "lost iphone smartphone mobile", "Pune", now)
	b.Description = a.Description
	b.Keywords = a.Keywords
	b.Location.Area = "Andheri"
	a.Location.Area = "Andheri West"

	score := s.Score(a, b)
	if score < 0 || score > 1 {
		t.Errorf("score = %.4f, want within [0, 1]", score)
	}
	// Everything matches: the score should be the full weight sum.
	if score < 0.99 {
		t.Errorf("score = %.4f, want ~1.0 for identical items", score)
	}
}

func TestScore_MissingFieldsAreNotMatches(t *testing.T) {
	s := testScorer()
	now := time.Now()

	a := testItem(models.TypeLost, "", "", "", now)
	b := testItem(models.TypeFound, "", "", "", now)

	// Only time proximity can contribute.
	if got := s.Score(a, b); got != 0.10 {
		t.Errorf("score = %.4f, want 0.10 (time signal only)", got)
	}
}

func TestScore_TitleStandsInForCategory(t *testing.T) {
	s := testScorer()
	now := time.Now()

	// Item b has no category but its title is a known alias token.
	a := testItem(models.TypeLost, "Mobile", "my device", "Pune", now)
	b := testItem(models.TypeFound, "", "smartphone", "Pune", now)

	score := s.Score(a, b)
	// category 0.4 + city 0.2 + time 0.1; keywords disjoint.
	if score < 0.69 || score > 0.71 {
		t.Errorf("score = %.4f, want 0.70", score)
	}
}

func TestScore_TimeDecay(t *testing.T) {
	s := testScorer()
	now := time.Now()

	cases := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"same week", 3 * 24 * time.Hour, 0.10},
		{"same month", 20 * 24 * time.Hour, 0.05},
		{"stale", 45 * 24 * time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := testItem(models.TypeLost, "", "", "", now)
			b := testItem(models.TypeFound, "", "", "", now.Add(-tc.age))
			if got := s.Score(a, b); got != tc.want {
				t.Errorf("score = %.4f, want %.4f", got, tc.want)
			}
		})
	}
}

func TestScore_KeywordPartialOverlapDoubled(t *testing.T) {
	s := testScorer()
	now := time.Now()

	// Half the keywords overlap; the x2 multiplier should yield the full
	// keyword weight: min(2 * 0.5, 1) * 0.2 = 0.2.
	a := testItem(models.TypeLost, "", "umbrella bottle", "", now)
	b := testItem(models.TypeFound, "", "umbrella jacket", "", now)

	got := s.Score(a, b)
	want := 0.20 + 0.10 // keywords + time
	if got < want-0.001 || got > want+0.001 {
		t.Errorf("score = %.4f, want %.4f", got, want)
	}
}

func TestKeywords_FiltersAndDedupes(t *testing.T) {
	item := &models.Item{
		Title:       "Lost my iPhone, near the station!",
		Description: "iphone is black",
		Keywords:    []string{"IPhone", "black"},
	}
	got := Keywords(item)

	want := map[string]bool{"iphone": true, "station": true, "black": true}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want exactly %v", got, want)
	}
	for _, w := range got {
		if !want[w] {
			t.Errorf("unexpected keyword %q", w)
		}
	}
}

func TestKeywordsMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"iphone", "iphone", true},
		{"phone", "iphone", true}, // substring, len > 3
		{"car", "cards", false},   // too short to count as a substring hit
		{"bag", "bag", true},
		{"wallet", "purse", false},
	}
	for _, tc := range cases {
		if got := keywordsMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("keywordsMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
		if got := keywordsMatch(tc.b, tc.a); got != tc.want {
			t.Errorf("keywordsMatch(%q, %q) = %v, want %v", tc.b, tc.a, got, tc.want)
		}
	}
}

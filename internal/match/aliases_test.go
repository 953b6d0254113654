package match

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retracehq/retrace/internal/models"
)

func TestAliasIndex_Related(t *testing.T) {
	idx := NewAliasIndex(DefaultAliasGroups)

	cases := []struct {
		a, b string
		want bool
	}{
		{"Mobile", "phone", true},
		{"mobile", "MOBILE", true},
		{"  iphone ", "android", true},
		{"wallet", "purse", true},
		{"wallet", "phone", false},
		{"", "phone", false},
		{"", "", false},
		{"books", "books", true}, // equal tokens need no group
	}
	for _, tc := range cases {
		if got := idx.Related(tc.a, tc.b); got != tc.want {
			t.Errorf("Related(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAliasIndex_TokenInMultipleGroups(t *testing.T) {
	idx := NewAliasIndex([][]string{
		{"bag", "backpack"},
		{"bag", "wallet"},
	})
	if !idx.Related("backpack", "bag") {
		t.Error("backpack/bag should be related")
	}
	if !idx.Related("wallet", "bag") {
		t.Error("wallet/bag should be related")
	}
	if idx.Related("backpack", "wallet") {
		t.Error("backpack/wallet share no group")
	}
}

func TestLoadAliasGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "groups:\n  - [bike, bicycle, cycle]\n  - [ring, jewellery]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	groups, err := LoadAliasGroups(path)
	if err != nil {
		t.Fatalf("LoadAliasGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if !NewAliasIndex(groups).Related("bike", "cycle") {
		t.Error("bike/cycle should be related after load")
	}
}

func TestLoadAliasGroups_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	if err := os.WriteFile(path, []byte("groups: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAliasGroups(path); err == nil {
		t.Error("expected error for empty groups")
	}
}

func TestAliasProvider_SwapChangesScoring(t *testing.T) {
	provider := NewAliasProvider(NewAliasIndex(DefaultAliasGroups))
	scorer := NewScorer(DefaultWeights(), provider)
	now := time.Now()

	a := &models.Item{Category: "umbrella", CreatedAt: now.Add(-60 * 24 * time.Hour)}
	b := &models.Item{Category: "parasol", CreatedAt: now.Add(-120 * 24 * time.Hour)}

	if got := scorer.Score(a, b); got != 0 {
		t.Fatalf("score before swap = %.2f, want 0", got)
	}

	provider.Swap(NewAliasIndex([][]string{{"umbrella", "parasol"}}))

	if got := scorer.Score(a, b); got != 0.40 {
		t.Errorf("score after swap = %.2f, want 0.40", got)
	}
}

package match

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// DefaultAliasGroups are the built-in category alias groups. Categories in
// the same group are treated as identical by the similarity scorer.
var DefaultAliasGroups = [][]string{
	{"mobile", "phone", "iphone", "smartphone", "cellphone", "android"},
	{"wallet", "purse", "pouch", "bag"},
	{"keys", "keychain", "car keys"},
	{"laptop", "computer", "macbook", "electronics"},
	{"watch", "smartwatch", "fitness band"},
}

// AliasIndex answers "are these two category tokens interchangeable" in
// O(1). It is immutable once built; hot reloads swap the whole index.
type AliasIndex struct {
	groups map[string][]int
}

// NewAliasIndex builds the membership index from a set of alias groups.
func NewAliasIndex(groups [][]string) *AliasIndex {
	idx := &AliasIndex{groups: make(map[string][]int)}
	for gid, group := range groups {
		for _, token := range group {
			key := normalizeToken(token)
			if key == "" {
				continue
			}
			idx.groups[key] = append(idx.groups[key], gid)
		}
	}
	return idx
}

// Related reports whether two tokens name the same category: equal after
// normalization, or members of a common alias group.
func (idx *AliasIndex) Related(a, b string) bool {
	na, nb := normalizeToken(a), normalizeToken(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	for _, ga := range idx.groups[na] {
		for _, gb := range idx.groups[nb] {
			if ga == gb {
				return true
			}
		}
	}
	return false
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AliasProvider holds the current alias index and supports atomic
// replacement when the alias file changes on disk.
type AliasProvider struct {
	current atomic.Pointer[AliasIndex]
}

// NewAliasProvider creates a provider seeded with the given index.
func NewAliasProvider(idx *AliasIndex) *AliasProvider {
	p := &AliasProvider{}
	p.current.Store(idx)
	return p
}

// Current returns the index in effect.
func (p *AliasProvider) Current() *AliasIndex {
	return p.current.Load()
}

// Swap installs a new index.
func (p *AliasProvider) Swap(idx *AliasIndex) {
	p.current.Store(idx)
}

type aliasFile struct {
	Groups [][]string `yaml:"groups"`
}

// LoadAliasGroups reads alias groups from a YAML file.
func LoadAliasGroups(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("match: read alias file: %w", err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("match: parse alias file: %w", err)
	}
	if len(f.Groups) == 0 {
		return nil, fmt.Errorf("match: alias file %s has no groups", path)
	}
	return f.Groups, nil
}

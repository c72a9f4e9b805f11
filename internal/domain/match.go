package domain

import (
	"math"
	"slices"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier substring is better)
	ScorePositionBonus = 10.0

	// Exact name match bonus (huge boost)
	ScoreExactNameBonus = 200.0

	// Usage weight (click counter contributes to final score)
	ScoreUsageWeight = 0.1
)

// ShortcutPrefix marks a search query as a shortcut lookup ("@you" -> YouTube).
const ShortcutPrefix = "@"

// Candidate is a shortcut with its match score.
type Candidate struct {
	Entry        Entry
	LexicalScore float64 // Score from name matching
	UsageScore   float64 // Score from click history
	TotalScore   float64 // Combined score
}

// ScoreName calculates the match score of a shortcut name against a query.
func ScoreName(query, name string) float64 {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(strings.TrimSpace(name))
	if query == "" || name == "" {
		return 0.0
	}

	if query == name {
		return ScoreExactMatch + ScoreExactNameBonus
	}

	if strings.HasPrefix(name, query) {
		return ScorePrefixMatch
	}

	if index := strings.Index(name, query); index >= 0 {
		// Earlier substring matches get higher score
		bonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(name)))
		return ScoreSubstringMatch + bonus
	}

	// Word-based: every query word appears in the name
	if words := strings.Fields(query); len(words) > 1 {
		allMatch := true
		for _, word := range words {
			if !strings.Contains(name, word) {
				allMatch = false
				break
			}
		}
		if allMatch {
			return ScoreFuzzyMatch
		}
	}

	if similarity := calculateSimilarity(query, name); similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// RankShortcuts ranks shortcuts by name match plus a logarithmic click bonus.
// Shortcuts that do not match at all are left out.
func RankShortcuts(query string, shortcuts []Shortcut) []Candidate {
	candidates := make([]Candidate, 0, len(shortcuts))

	for i, s := range shortcuts {
		lexical := ScoreName(query, s.Name)
		if lexical == 0.0 {
			continue
		}

		usage := 0.0
		if s.Clicks > 0 {
			usage = math.Log10(float64(s.Clicks)+1) * ScoreUsageWeight * 100
		}

		candidates = append(candidates, Candidate{
			Entry:        Entry{Index: i, Shortcut: s},
			LexicalScore: lexical,
			UsageScore:   usage,
			TotalScore:   lexical + usage,
		})
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.TotalScore > b.TotalScore:
			return -1
		case a.TotalScore < b.TotalScore:
			return 1
		default:
			return 0
		}
	})

	return candidates
}

// BestShortcut returns the best match for a query, if any.
func BestShortcut(query string, shortcuts []Shortcut) (Entry, bool) {
	candidates := RankShortcuts(query, shortcuts)
	if len(candidates) == 0 {
		return Entry{}, false
	}
	return candidates[0].Entry, true
}

// calculateSimilarity is the ratio of query characters present in s2
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	total := 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

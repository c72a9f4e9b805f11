package domain

import "testing"

func TestScoreName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		entry string
		want  float64
	}{
		{"exact match", "youtube", "YouTube", ScoreExactMatch + ScoreExactNameBonus},
		{"prefix", "you", "YouTube", ScorePrefixMatch},
		{"empty query", "", "YouTube", 0},
		{"no overlap", "xyz", "Amazon", 0},
		{"multi word", "co pilot", "Co-Pilot", ScoreFuzzyMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreName(tt.query, tt.entry); got != tt.want {
				t.Errorf("ScoreName(%q, %q) = %v, want %v", tt.query, tt.entry, got, tt.want)
			}
		})
	}
}

func TestScoreNameSubstringPosition(t *testing.T) {
	early := ScoreName("tube", "tubeYou")
	late := ScoreName("tube", "YouTube")
	if early <= late {
		t.Errorf("prefix score %v should beat substring score %v", early, late)
	}
	if late <= ScoreSubstringMatch {
		t.Errorf("substring score %v should include a position bonus", late)
	}
}

func TestRankShortcutsUsesClicks(t *testing.T) {
	shortcuts := []Shortcut{
		{Name: "Mail Work", Clicks: 0},
		{Name: "Mail Home", Clicks: 50},
	}

	got := RankShortcuts("mail", shortcuts)
	if len(got) != 2 {
		t.Fatalf("RankShortcuts() returned %d candidates, want 2", len(got))
	}
	if got[0].Entry.Index != 1 {
		t.Errorf("top candidate index = %d, want 1 (more clicks)", got[0].Entry.Index)
	}
	if got[0].UsageScore <= 0 {
		t.Error("usage score should be positive for clicked shortcuts")
	}
}

func TestBestShortcut(t *testing.T) {
	shortcuts := DefaultSeed()

	entry, ok := BestShortcut("amaz", shortcuts)
	if !ok || entry.Shortcut.Name != "Amazon" {
		t.Errorf("BestShortcut(amaz) = %+v, %v", entry, ok)
	}

	if _, ok := BestShortcut("qqqq", shortcuts); ok {
		t.Error("BestShortcut(qqqq) should not match")
	}
}

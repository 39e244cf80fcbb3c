package matching

import (
	"reflect"
	"testing"
)

func omenPrimary() PrimaryRecord {
	return PrimaryRecord{Title: "Omen", OriginalTitle: "Augure", Year: 2023, Directors: []string{"Baloji"}}
}

func omenCandidate(directors ...string) Candidate {
	return Candidate{ID: 1, Title: "Omen", OriginalTitle: "Augure", Date: "2023-05-20", Directors: directors}
}

func TestScoreDirectorFuzzyMatch(t *testing.T) {
	card := Score(omenPrimary(), omenCandidate("Baloji Tshiani"))
	if !card.DirectorMatched || card.DirectorPoints != 50 {
		t.Fatalf("expected director match, got %#v", card)
	}
	if card.TitlePoints != 30 || card.YearPoints != 10 {
		t.Fatalf("unexpected title/year points %#v", card)
	}
	if card.Total != 90 {
		t.Fatalf("expected total 90, got %d", card.Total)
	}
}

func TestScoreDirectorMismatchPenalty(t *testing.T) {
	card := Score(omenPrimary(), omenCandidate("Richard Donner"))
	if card.DirectorMatched || card.DirectorPoints != -20 {
		t.Fatalf("expected mismatch penalty, got %#v", card)
	}
	if card.Total >= AcceptanceThreshold {
		t.Fatalf("mismatched director must not clear threshold: %d", card.Total)
	}
}

func TestScoreNoDirectorsNoPenalty(t *testing.T) {
	primary := omenPrimary()
	primary.Directors = nil
	card := Score(primary, omenCandidate("Richard Donner"))
	if card.DirectorPoints != 0 {
		t.Fatalf("expected no director points, got %#v", card)
	}
}

func TestScoreReversedDirectorName(t *testing.T) {
	primary := omenPrimary()
	primary.Directors = []string{"Donner Richard"}
	if card := Score(primary, omenCandidate("Richard Donner")); !card.DirectorMatched {
		t.Fatalf("expected reversed name to match, got %#v", card)
	}
}

func TestScoreDirectorDiacriticsAndHyphens(t *testing.T) {
	primary := omenPrimary()
	primary.Directors = []string{"ALEJANDRO GONZALEZ INARRITU"}
	if card := Score(primary, omenCandidate("Alejandro González Iñárritu")); !card.DirectorMatched {
		t.Fatalf("expected folded match, got %#v", card)
	}
	primary.Directors = []string{"Wong Kar Wai"}
	if card := Score(primary, omenCandidate("Wong Kar-wai")); !card.DirectorMatched {
		t.Fatalf("expected hyphen-insensitive match, got %#v", card)
	}
}

func TestScoreTokenOverlapIgnoresStopwords(t *testing.T) {
	primary := omenPrimary()
	primary.Directors = []string{"The Coen Brothers"}
	if card := Score(primary, omenCandidate("Joel Coen", "Ethan Coen")); !card.DirectorMatched {
		t.Fatalf("expected token overlap match, got %#v", card)
	}
	primary.Directors = []string{"The Brothers"}
	if card := Score(primary, omenCandidate("Brothers Quay")); card.DirectorMatched {
		t.Fatalf("stopwords alone must not match, got %#v", card)
	}
}

func TestScoreSurnameRuleNeedsStrongTitle(t *testing.T) {
	primary := PrimaryRecord{Title: "Lust, Caution", Year: 2007, Directors: []string{"Ang Lee"}}
	strong := Candidate{Title: "Lust, Caution", Date: "2007-08-30", Directors: []string{"A. Lee"}}
	if card := Score(primary, strong); !card.DirectorMatched {
		t.Fatalf("expected surname match with strong title, got %#v", card)
	}
	weak := Candidate{Title: "Crouching Tiger", Date: "2007-08-30", Directors: []string{"A. Lee"}}
	if card := Score(primary, weak); card.DirectorMatched {
		t.Fatalf("surname rule must not apply with weak title, got %#v", card)
	}
}

func TestScoreTitleUsesAlternativeAndFoldedTitles(t *testing.T) {
	primary := PrimaryRecord{Title: "Amelie", Year: 2001}
	candidate := Candidate{Title: "Le Fabuleux Destin d'Amélie Poulain", AlternativeTitles: []string{"Amélie"}, Date: "2001-04-25"}
	card := Score(primary, candidate)
	if card.TitleSimilarity != 100 || card.TitlePoints != 30 {
		t.Fatalf("expected folded alternative title match, got %#v", card)
	}
}

func TestScoreYearPoints(t *testing.T) {
	primary := omenPrimary()
	primary.Directors = nil
	cases := map[string]int{"2023-01-01": 10, "2022-12-31": 5, "2024-01-01": 5, "2021-01-01": 0, "": 0}
	for date, want := range cases {
		c := omenCandidate()
		c.Date = date
		if got := Score(primary, c).YearPoints; got != want {
			t.Errorf("date %q: year points = %d, want %d", date, got, want)
		}
	}
}

func TestScoreRuntimeRules(t *testing.T) {
	primary := omenPrimary()
	primary.RuntimeMinutes = 90

	c := omenCandidate("Baloji Tshiani")
	c.RuntimeMinutes = 98
	if got := Score(primary, c).RuntimePoints; got != 10 {
		t.Fatalf("close runtime: got %d", got)
	}

	c.RuntimeMinutes = 120
	if got := Score(primary, c).RuntimePoints; got != 0 {
		t.Fatalf("moderate runtime delta: got %d", got)
	}

	c.RuntimeMinutes = 150
	card := Score(primary, c)
	if card.RuntimePoints != -10 || card.Total != 80 {
		t.Fatalf("strong identity should soften runtime penalty: %#v", card)
	}

	other := omenCandidate("Richard Donner")
	other.RuntimeMinutes = 150
	if got := Score(primary, other).RuntimePoints; got != -30 {
		t.Fatalf("expected full runtime penalty, got %d", got)
	}
}

func TestDegradedScorerNeverAccepts(t *testing.T) {
	scorer := NewScorer(nil)
	card := scorer.Score(omenPrimary(), omenCandidate("Baloji"))
	if !card.Degraded || card.Total != 10 {
		t.Fatalf("expected degraded exact-year score, got %#v", card)
	}
	c := omenCandidate("Baloji")
	c.Date = "2020-01-01"
	if got := scorer.Score(omenPrimary(), c).Total; got != 0 {
		t.Fatalf("expected 0 for year mismatch, got %d", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	primary := omenPrimary()
	candidate := omenCandidate("Baloji Tshiani")
	first := Score(primary, candidate)
	for i := 0; i < 25; i++ {
		if got := Score(primary, candidate); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %#v != %#v", i, got, first)
		}
	}
}

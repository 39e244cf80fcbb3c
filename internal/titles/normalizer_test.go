package titles

import (
	"reflect"
	"strings"
	"testing"
)

func TestCleanStripsEditionNoise(t *testing.T) {
	var n Normalizer
	cases := map[string]string{
		"Blade Runner (Director's Cut)":       "Blade Runner",
		"Apocalypse Now Redux":                "Apocalypse Now",
		"Metropolis (Restored Version)":       "Metropolis",
		"Lawrence of Arabia [Remastered]":     "Lawrence of Arabia",
		"Some Song [MV]":                      "Some Song",
		"Amadeus - Directors Cut":             "Amadeus",
		"The Thing":                           "The Thing",
		"Aliens (Special Edition Remastered)": "Aliens",
	}
	for input, want := range cases {
		if got := n.Clean(input); got != want {
			t.Errorf("Clean(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeRemovesConjunctions(t *testing.T) {
	var n Normalizer
	cases := map[string]string{
		"Tom and Jerry":        "Tom Jerry",
		"Tom & Jerry":          "Tom Jerry",
		"Crime AND Punishment": "Crime Punishment",
		"Andromeda Strain":     "Andromeda Strain",
		"Sand and Sea":         "Sand Sea",
	}
	for input, want := range cases {
		if got := n.Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAlternativeSpellingsPreservesCase(t *testing.T) {
	var n Normalizer
	cases := map[string][]string{
		"The Color Purple": {"The Colour Purple"},
		"THE COLOR PURPLE": {"THE COLOUR PURPLE"},
		"the color purple": {"the colour purple"},
		"Theatre of Blood": {"Theater of Blood"},
		"Fallen":           nil,
		"Zip Code Blues":   {"Postcode Blues"},
	}
	for input, want := range cases {
		got := n.AlternativeSpellings(input)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AlternativeSpellings(%q) = %#v, want %#v", input, got, want)
		}
	}
}

func TestAlternativeSpellingsOnePerSubstitution(t *testing.T) {
	var n Normalizer
	got := n.AlternativeSpellings("Color of the Fall")
	want := []string{"Colour of the Fall", "Color of the Autumn"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSpellingSubstitutionsCompiledBothWays(t *testing.T) {
	if got, want := len(spellingSubstitutions), 2*len(regionalPairs); got != want {
		t.Fatalf("expected %d substitutions, got %d", want, got)
	}
	for i, pair := range regionalPairs {
		forward, backward := spellingSubstitutions[2*i], spellingSubstitutions[2*i+1]
		if !forward.pattern.MatchString(pair.a) || forward.to != pair.b {
			t.Fatalf("forward substitution for %q not compiled", pair.a)
		}
		if !backward.pattern.MatchString(pair.b) || backward.to != pair.a {
			t.Fatalf("backward substitution for %q not compiled", pair.b)
		}
	}
	if !spellingSubstitutions[0].pattern.MatchString("THE " + strings.ToUpper(regionalPairs[0].a)) {
		t.Fatalf("substitution patterns should ignore case")
	}
}

func TestAlternativeSpellingsMultiWordPhrase(t *testing.T) {
	var n Normalizer
	got := n.AlternativeSpellings("The Zip  Code Killer")
	want := []string{"The Postcode Killer"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestVariantsOrderingAndDedup(t *testing.T) {
	var n Normalizer
	got := n.Variants("  The Color Purple and Gold (Director's Cut) ", "La Couleur Pourpre")
	want := []string{
		"The Color Purple and Gold (Director's Cut)",
		"La Couleur Pourpre",
		"The Color Purple and Gold",
		"The Color Purple Gold (Director's Cut)",
		"The Colour Purple and Gold",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Variants = %#v\nwant %#v", got, want)
	}
}

func TestVariantsSkipsOriginalEqualToTitle(t *testing.T) {
	var n Normalizer
	got := n.Variants("Heat", "HEAT")
	if !reflect.DeepEqual(got, []string{"Heat"}) {
		t.Fatalf("Variants = %#v", got)
	}
}

func TestVariantsNeverEmptyOrDuplicated(t *testing.T) {
	var n Normalizer
	inputs := [][2]string{
		{"", ""},
		{"   ", "Original"},
		{"Redux", ""},
		{"And", "&"},
		{"Honor & Defense", "Honour and Defence"},
	}
	for _, in := range inputs {
		got := n.Variants(in[0], in[1])
		seen := map[string]bool{}
		for _, v := range got {
			if strings.TrimSpace(v) == "" {
				t.Errorf("Variants(%q, %q) contains empty entry", in[0], in[1])
			}
			key := strings.ToLower(v)
			if seen[key] {
				t.Errorf("Variants(%q, %q) duplicates %q", in[0], in[1], v)
			}
			seen[key] = true
		}
	}
	if got := n.Variants("", ""); len(got) != 0 {
		t.Fatalf("expected no variants for empty input, got %#v", got)
	}
}

func TestVariantsDeterministic(t *testing.T) {
	var n Normalizer
	first := n.Variants("Color of the Fall and Honor", "")
	for i := 0; i < 20; i++ {
		if got := n.Variants("Color of the Fall and Honor", ""); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %#v != %#v", i, got, first)
		}
	}
}

func TestSanitizeQuery(t *testing.T) {
	if got := SanitizeQuery("the_big__lebowski "); got != "the big lebowski" {
		t.Fatalf("SanitizeQuery = %q", got)
	}
}

func TestCoreTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Star Wars: Episode IV - A New Hope", "Star Wars", true},
		{"Mission - Impossible", "Mission", true},
		{"Alien (1979)", "Alien", true},
		{"Dune [Extended]", "Dune", true},
		{"Heat", "", false},
		{": Leading", "", false},
	}
	for _, tc := range cases {
		got, ok := CoreTitle(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("CoreTitle(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestYearFromDate(t *testing.T) {
	cases := map[string]int{"1999-03-31": 1999, "": 0, "abc": 0, "20x1-01-01": 0, "2004": 2004}
	for in, want := range cases {
		if got := YearFromDate(in); got != want {
			t.Errorf("YearFromDate(%q) = %d, want %d", in, got, want)
		}
	}
}

package numeral

import (
	"strconv"
	"testing"
)

func TestResolveTableTotality(t *testing.T) {
	tables := map[string]map[string]int{
		"ordinals": ordinals,
		"units":    units,
		"teens":    teens,
		"twenties": twenties,
		"decades":  decades,
		"hundreds": hundreds,
	}

	for tableName, table := range tables {
		for word, value := range table {
			got, ok := Resolve(word)
			if !ok {
				t.Errorf("%s: Resolve(%q) failed", tableName, word)
				continue
			}
			if got != strconv.Itoa(value) {
				t.Errorf("%s: Resolve(%q) = %q, want %d", tableName, word, got, value)
			}
		}
	}
}

func TestResolveAccentVariants(t *testing.T) {
	pairs := [][2]string{
		{"dieciséis", "dieciseis"},
		{"veintidós", "veintidos"},
		{"veintitrés", "veintitres"},
		{"veintiséis", "veintiseis"},
		{"séptimo", "septimo"},
	}

	for _, pair := range pairs {
		accented, okAccented := Resolve(pair[0])
		plain, okPlain := Resolve(pair[1])
		if !okAccented || !okPlain {
			t.Errorf("Resolve(%q)=%v, Resolve(%q)=%v, want both resolved", pair[0], okAccented, pair[1], okPlain)
			continue
		}
		if accented != plain {
			t.Errorf("Resolve(%q) = %q but Resolve(%q) = %q", pair[0], accented, pair[1], plain)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"ordinal", "primero", "1", true},
		{"ordinal_trailing_period", "cuarto.", "4", true},
		{"ordinal_many_periods", "cuarto...  ", "4", true},
		{"uppercase", "CUARTO", "4", true},
		{"teen", "quince", "15", true},
		{"twenty_group", "veintinueve", "29", true},
		{"decade", "noventa", "90", true},
		{"compound_decade", "ochenta y cuatro", "84", true},
		{"compound_decade_extra_spaces", "ochenta   y  cuatro", "84", true},
		{"bare_cien", "cien", "100", true},
		{"bare_ciento", "ciento", "100", true},
		{"feminine_hundred", "doscientas", "200", true},
		{"hundred_plus_unit", "doscientos uno", "201", true},
		{"hundred_plus_compound", "ciento ochenta y cuatro", "184", true},
		{"hundred_plus_teen", "trescientos doce", "312", true},
		{"hundred_plus_ordinal", "ciento cuarto", "104", true},
		{"ordinal_with_suffix", "cuarto bis", "4 bis", true},
		{"compound_with_suffix", "treinta y cinco quater", "35 quater", true},
		{"accented_suffix", "treinta y cinco quáter", "35 quater", true},
		{"uppercase_suffix", "Tercero TER", "3 ter", true},
		{"suffix_then_period", "sexto decies.", "6 decies", true},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"only_period", ".", "", false},
		{"unknown_words", "foo bar", "", false},
		{"unknown_with_suffix", "foo bis", "", false},
		{"suffix_alone", "bis", "", false},
		{"compound_with_ordinal", "treinta y cuarto", "", false},
		{"compound_with_teen", "treinta y doce", "", false},
		{"unit_y_unit", "uno y dos", "", false},
		{"hundred_bad_remainder", "ciento foo", "", false},
		{"hundred_hundred", "ciento cien", "", false},
		{"digits", "12", "", false},
		{"trailing_garbage", "cuarto foo", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.input)
			if ok != tc.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v (got %q)", tc.input, ok, tc.ok, got)
			}
			if got != tc.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestResolveValue(t *testing.T) {
	value, ok := ResolveValue("ciento ochenta y cuatro bis")
	if !ok {
		t.Fatal("ResolveValue failed")
	}
	if value.Number != 184 {
		t.Errorf("Number = %d, want 184", value.Number)
	}
	if value.Suffix != SuffixBis {
		t.Errorf("Suffix = %v, want bis", value.Suffix)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		phrase string
		class  Class
		value  int
	}{
		{"segundo", ClassOrdinal, 2},
		{"dos", ClassUnit, 2},
		{"diez", ClassTeen, 10},
		{"veinte", ClassTwenty, 20},
		{"treinta", ClassDecade, 30},
		{"treinta y uno", ClassCompoundDecade, 31},
		{"trescientas", ClassHundred, 300},
	}

	for _, tc := range cases {
		token, ok := Classify(tc.phrase)
		if !ok {
			t.Errorf("Classify(%q) failed", tc.phrase)
			continue
		}
		if token.Class != tc.class || token.Value != tc.value {
			t.Errorf("Classify(%q) = %s/%d, want %s/%d", tc.phrase, token.Class, token.Value, tc.class, tc.value)
		}
	}

	if _, ok := Classify("ciento uno"); ok {
		t.Error("hundred plus remainder is a composition, not a single class")
	}
}

func TestTablesDoNotOverlap(t *testing.T) {
	seen := make(map[string]string)
	tables := map[string]map[string]int{
		"ordinals": ordinals,
		"units":    units,
		"teens":    teens,
		"twenties": twenties,
		"decades":  decades,
		"hundreds": hundreds,
	}
	for tableName, table := range tables {
		for word := range table {
			if previous, exists := seen[word]; exists {
				t.Errorf("word %q appears in both %s and %s", word, previous, tableName)
			}
			seen[word] = tableName
		}
	}
}

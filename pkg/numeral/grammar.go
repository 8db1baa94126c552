package numeral

import "strings"

// Class is the grammatical class of a recognized numeral phrase.
type Class int

const (
	ClassOrdinal Class = iota + 1
	ClassUnit
	ClassTeen
	ClassTwenty
	ClassDecade
	ClassCompoundDecade
	ClassHundred
)

func (c Class) String() string {
	switch c {
	case ClassOrdinal:
		return "ordinal"
	case ClassUnit:
		return "unit"
	case ClassTeen:
		return "teen"
	case ClassTwenty:
		return "twenty"
	case ClassDecade:
		return "decade"
	case ClassCompoundDecade:
		return "compound_decade"
	case ClassHundred:
		return "hundred"
	default:
		return "unknown"
	}
}

// Token is a phrase classified into exactly one numeral class and value.
type Token struct {
	Phrase string `json:"phrase"`
	Class  Class  `json:"class"`
	Value  int    `json:"value"`
}

// Tables are keyed by lowercase, unaccented words. Callers fold accents before
// lookup, so "dieciséis" and "dieciseis" share one entry.
var (
	ordinals = map[string]int{
		"primero": 1,
		"segundo": 2,
		"tercero": 3,
		"cuarto":  4,
		"quinto":  5,
		"sexto":   6,
		"septimo": 7,
		"octavo":  8,
		"noveno":  9,
	}

	units = map[string]int{
		"uno":    1,
		"dos":    2,
		"tres":   3,
		"cuatro": 4,
		"cinco":  5,
		"seis":   6,
		"siete":  7,
		"ocho":   8,
		"nueve":  9,
	}

	teens = map[string]int{
		"diez":       10,
		"once":       11,
		"doce":       12,
		"trece":      13,
		"catorce":    14,
		"quince":     15,
		"dieciseis":  16,
		"diecisiete": 17,
		"dieciocho":  18,
		"diecinueve": 19,
	}

	twenties = map[string]int{
		"veinte":       20,
		"veintiuno":    21,
		"veintidos":    22,
		"veintitres":   23,
		"veinticuatro": 24,
		"veinticinco":  25,
		"veintiseis":   26,
		"veintisiete":  27,
		"veintiocho":   28,
		"veintinueve":  29,
	}

	decades = map[string]int{
		"treinta":   30,
		"cuarenta":  40,
		"cincuenta": 50,
		"sesenta":   60,
		"setenta":   70,
		"ochenta":   80,
		"noventa":   90,
	}

	hundreds = map[string]int{
		"cien":        100,
		"ciento":      100,
		"doscientos":  200,
		"doscientas":  200,
		"trescientos": 300,
		"trescientas": 300,
	}
)

// directTables lists the single-word tables in lookup order.
var directTables = []struct {
	class Class
	words map[string]int
}{
	{ClassOrdinal, ordinals},
	{ClassUnit, units},
	{ClassTeen, teens},
	{ClassTwenty, twenties},
	{ClassDecade, decades},
}

// lookupDirect resolves a single word against the ordinal, unit, teen,
// twenty-group and decade tables.
func lookupDirect(phrase string) (Token, bool) {
	for _, table := range directTables {
		if value, ok := table.words[phrase]; ok {
			return Token{Phrase: phrase, Class: table.class, Value: value}, true
		}
	}
	return Token{}, false
}

// lookupCompoundDecade resolves "<decade> y <unit>", e.g. "ochenta y cuatro".
func lookupCompoundDecade(phrase string) (Token, bool) {
	decadeWord, unitWord, found := strings.Cut(phrase, " y ")
	if !found {
		return Token{}, false
	}
	decade, ok := decades[decadeWord]
	if !ok {
		return Token{}, false
	}
	unit, ok := units[unitWord]
	if !ok {
		return Token{}, false
	}
	return Token{Phrase: phrase, Class: ClassCompoundDecade, Value: decade + unit}, true
}

// lookupHundred resolves a bare hundred marker.
func lookupHundred(phrase string) (Token, bool) {
	if value, ok := hundreds[phrase]; ok {
		return Token{Phrase: phrase, Class: ClassHundred, Value: value}, true
	}
	return Token{}, false
}

// Classify assigns a folded phrase (lowercase, unaccented, single-spaced) to
// its numeral class. Hundred-plus-remainder phrases such as "ciento uno" are
// compositions of two tokens and are not classified here.
func Classify(phrase string) (Token, bool) {
	if token, ok := lookupDirect(phrase); ok {
		return token, true
	}
	if token, ok := lookupCompoundDecade(phrase); ok {
		return token, true
	}
	return lookupHundred(phrase)
}

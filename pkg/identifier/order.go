package identifier

import (
	"cmp"
	"slices"
)

// Compare orders identifiers by base number, then suffix rank (none < bis <
// ter < quater < ... < decies), then sub-number with an absent sub-number
// counted as zero. It returns -1, 0 or 1.
func Compare(a, b ID) int {
	switch {
	case a.Base != b.Base:
		return cmp.Compare(a.Base, b.Base)
	case a.Suffix != b.Suffix:
		return cmp.Compare(a.Suffix.Rank(), b.Suffix.Rank())
	default:
		return cmp.Compare(subNumberOf(a), subNumberOf(b))
	}
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}

// Sort orders ids in place using Compare as the only key.
func Sort(ids []ID) {
	slices.SortStableFunc(ids, Compare)
}

// SortStrings orders article-number strings by their parsed identifiers.
// Strings that do not parse keep their relative order after all valid ones.
func SortStrings(numbers []string) {
	SortBy(numbers, func(number string) string { return number })
}

// SortBy orders items by the identifier found in each item's key. Each key is
// parsed once; items whose key does not parse are moved to the end in their
// original relative order.
func SortBy[T any](items []T, key func(T) string) {
	type keyed struct {
		item  T
		id    ID
		valid bool
	}

	entries := make([]keyed, len(items))
	for i, item := range items {
		id, err := Parse(key(item))
		entries[i] = keyed{item: item, id: id, valid: err == nil}
	}

	slices.SortStableFunc(entries, func(a, b keyed) int {
		switch {
		case a.valid && b.valid:
			return Compare(a.id, b.id)
		case a.valid:
			return -1
		case b.valid:
			return 1
		default:
			return 0
		}
	})

	for i := range entries {
		items[i] = entries[i].item
	}
}

func subNumberOf(id ID) int {
	if !id.HasSubNumber {
		return 0
	}
	return id.SubNumber
}

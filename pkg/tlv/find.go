package tlv

import "strings"

// FindTag walks entries depth first and returns the first entry carrying tag.
// Any value longer than two bytes is tentatively decoded as nested TLV; a
// value that does not decode cleanly is treated as primitive.
func FindTag(entries []Entry, tag string) (Entry, bool) {
	var found Entry
	ok := false
	walk(entries, strings.ToUpper(tag), 0, func(e Entry) bool {
		found, ok = e, true
		return false
	})
	return found, ok
}

// FindAllTags returns every entry carrying tag, in depth-first order.
func FindAllTags(entries []Entry, tag string) []Entry {
	var found []Entry
	walk(entries, strings.ToUpper(tag), 0, func(e Entry) bool {
		found = append(found, e)
		return true
	})
	return found
}

// FindValue is FindTag returning only the value, nil when absent.
func FindValue(entries []Entry, tag string) []byte {
	if e, ok := FindTag(entries, tag); ok {
		return e.Value
	}
	return nil
}

// walk visits matches until visit returns false. It reports whether the walk
// should continue.
func walk(entries []Entry, tag string, depth int, visit func(Entry) bool) bool {
	if depth > MaxDepth {
		return true
	}

	for _, e := range entries {
		if e.Tag == tag && !visit(e) {
			return false
		}

		if len(e.Value) <= 2 {
			continue
		}

		nested, err := DecodeStrict(e.Value)
		if err != nil || len(nested) == 0 {
			continue
		}

		if !walk(nested, tag, depth+1, visit) {
			return false
		}
	}

	return true
}

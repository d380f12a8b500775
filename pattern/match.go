package pattern

import "bytes"

// Find returns the lowest offset in buf where p matches, or -1
func (p Pattern) Find(buf []byte) int {
	matches := p.FindAll(buf, 1)
	if len(matches) == 0 {
		return -1
	}
	return matches[0]
}

// FindAll returns the ascending offsets in buf where p matches, at most limit
// of them when limit > 0.
//
// Candidates are rejected on the anchor byte before the rest is compared. A
// pattern starting with a wildcard has no anchor and every offset is compared.
func (p Pattern) FindAll(buf []byte, limit int) []int {
	n := len(p.values)
	if n == 0 || len(buf) < n {
		return nil
	}
	last := len(buf) - n

	var matches []int
	if !p.Anchored() {
		for i := 0; i <= last; i++ {
			if p.matchFrom(buf, i, 0) {
				matches = append(matches, i)
				if limit > 0 && len(matches) >= limit {
					return matches
				}
			}
		}
		return matches
	}

	anchor := p.values[0]
	for i := 0; i <= last; i++ {
		next := bytes.IndexByte(buf[i:last+1], anchor)
		if next < 0 {
			break
		}
		i += next

		if p.matchFrom(buf, i, 1) {
			matches = append(matches, i)
			if limit > 0 && len(matches) >= limit {
				return matches
			}
		}
	}
	return matches
}

// matchFrom compares elements [from, n) against buf at offset i
func (p Pattern) matchFrom(buf []byte, i, from int) bool {
	for j := from; j < len(p.values); j++ {
		if p.literal[j] && buf[i+j] != p.values[j] {
			return false
		}
	}
	return true
}

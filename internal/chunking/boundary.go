package chunking

// MatchRemainder returns how many pattern characters are still needed to
// complete a match that starts inside tail and runs off its end, or -1 when
// no suffix of tail is a non-empty prefix of pattern.
//
// Candidates are tried left to right and the first one whose run reaches the
// end of tail wins. A complete match ending exactly at the end yields 0.
// The scan is naive: tail and pattern are both bounded by the chunk budget.
func MatchRemainder(tail, pattern []rune) int {
	if len(pattern) == 0 {
		return -1
	}
	first := pattern[0]
	for i := range tail {
		if tail[i] != first {
			continue
		}
		n := 1
		for n < len(pattern) && i+n < len(tail) && tail[i+n] == pattern[n] {
			n++
		}
		if i+n == len(tail) {
			return len(pattern) - n
		}
	}
	return -1
}

// scanEnd walks the leftmost non-overlapping matches of pattern in buf
// starting at from and returns the end of the last one, or from if none.
func scanEnd(buf, pattern []rune, from int) int {
	for {
		i := IndexRunes(buf[from:], pattern)
		if i < 0 {
			return from
		}
		from += i + len(pattern)
	}
}

// IndexRunes returns the index of the first occurrence of pattern in s,
// or -1. An empty pattern matches at 0.
func IndexRunes(s, pattern []rune) int {
	n := len(pattern)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if s[i] != pattern[0] {
			continue
		}
		j := 1
		for j < n && s[i+j] == pattern[j] {
			j++
		}
		if j == n {
			return i
		}
	}
	return -1
}

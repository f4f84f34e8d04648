package text

import "sort"

// DefaultMaxKeywords is the number of keywords kept when no limit is configured.
const DefaultMaxKeywords = 5

// ExtractKeywords returns up to k distinct tokens ranked by frequency,
// most frequent first. Ties keep first-occurrence order. Stopwords are
// skipped even if the caller passes unfiltered tokens.
func ExtractKeywords(tokens []string, k int) []string {
	if k <= 0 {
		return []string{}
	}

	type entry struct {
		word  string
		count int
		first int
	}

	index := make(map[string]int, len(tokens))
	var entries []entry
	for i, tok := range tokens {
		if tok == "" || IsStopword(tok) {
			continue
		}
		if j, ok := index[tok]; ok {
			entries[j].count++
			continue
		}
		index[tok] = len(entries)
		entries = append(entries, entry{word: tok, count: 1, first: i})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].count != entries[b].count {
			return entries[a].count > entries[b].count
		}
		return entries[a].first < entries[b].first
	})

	if len(entries) > k {
		entries = entries[:k]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.word
	}
	return out
}

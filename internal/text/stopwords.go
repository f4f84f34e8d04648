package text

// stopwords is a fixed English stopword set.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "and", "but", "if", "or", "because", "as", "until",
		"while", "of", "at", "by", "for", "with", "about", "against", "between",
		"into", "through", "during", "before", "after", "above", "below", "to",
		"from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
		"further", "then", "once", "here", "there", "when", "where", "why", "how",
		"all", "any", "both", "each", "few", "more", "most", "other", "some",
		"such", "no", "nor", "not", "only", "own", "same", "so", "than", "too",
		"very", "will", "just", "should", "now", "be", "is", "are", "was", "were",
		"been", "being", "have", "has", "had", "having", "do", "does", "did",
		"doing", "can", "could", "would", "may", "might", "must", "shall",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you",
		"your", "yours", "yourself", "yourselves", "he", "him", "his", "himself",
		"she", "her", "hers", "herself", "it", "its", "itself", "they", "them",
		"their", "theirs", "themselves", "am", "s", "t", "don",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w (already lowercased) is a stopword.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

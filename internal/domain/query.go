package domain

// Source is one cited chunk in a query answer. Relevance is raw cosine
// similarity, identical to the score used for threshold filtering.
type Source struct {
	Document  string
	Page      int
	Relevance float32
}

// QueryResult is the ephemeral outcome of answering one query. Sources are
// ordered by descending relevance and never contain a score below the
// configured similarity threshold.
type QueryResult struct {
	Query    string
	Answer   string
	Category Category
	Sources  []Source
}

package metrics

const (
	// StatusSuccess marks a result whose operation completed normally.
	StatusSuccess = "success"
	// StatusError marks a result carrying a captured failure.
	StatusError = "error"
)

// QueryResult is the outcome of one time-range query. It is constructed once
// per call and immutable afterwards.
type QueryResult struct {
	Status      string   `json:"status"`
	Query       string   `json:"query"`
	From        int64    `json:"from,omitempty"`
	To          int64    `json:"to,omitempty"`
	SeriesCount int      `json:"series_count"`
	Series      []Series `json:"series"`
	Error       string   `json:"error,omitempty"`
}

// IsSuccess reports whether the query completed normally.
func (r QueryResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// SearchResult is the outcome of one metric-name search.
type SearchResult struct {
	Status  string   `json:"status"`
	Prefix  string   `json:"prefix"`
	Count   int      `json:"count"`
	Metrics []string `json:"metrics"`
	Error   string   `json:"error,omitempty"`
}

// TagsResult is the outcome of one tag lookup.
type TagsResult struct {
	Status  string `json:"status"`
	Metric  string `json:"metric"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

package datadog

// RawSeries is one series as delivered by the upstream metrics API, before
// normalization. The point representation varies by SDK version, so points
// are kept opaque here and decoded defensively by the normalization layer.
type RawSeries struct {
	// Scope is the tag scope of the series ("host:a"). May be empty for an
	// unscoped query.
	Scope string
	// Points holds the raw data points. Each element is either an indexable
	// [timestamp_ms, value] pair or an attribute-shaped object; see
	// ObjectPoint and the metrics package.
	Points []any
}

// TimeseriesResponse is the raw result of a time-range query.
type TimeseriesResponse struct {
	Series []RawSeries
}

// ObjectPoint is the attribute-shaped point representation some SDK versions
// return instead of the [timestamp, value] pair. Timestamp is in
// milliseconds.
type ObjectPoint struct {
	Timestamp float64
	Value     float64
}

// SearchResponse is the raw result of a metric-name search. Depending on the
// SDK version the container is either a flat name list ([]string), a list of
// items carrying a name attribute ([]any), or a wrapper object holding one of
// those under a "results" or "metrics" key. The search executor probes these
// shapes in order.
type SearchResponse struct {
	Results any
}

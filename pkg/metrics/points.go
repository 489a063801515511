// Package metrics turns loosely-typed upstream time-series responses into a
// stable internal shape and runs the query, search and tag operations against
// the backend, converting every upstream failure into a typed result.
package metrics

import (
	"encoding/json"

	"github.com/ddbridge/datadog-metrics-mcp/pkg/datadog"
)

// Point is one normalized metric sample. Timestamp is unix seconds and is
// never negative once a point has been accepted.
type Point struct {
	Timestamp int64
	Value     float64
}

// MarshalJSON encodes the point as the [timestamp, value] pair the wire
// format uses.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Value})
}

// UnmarshalJSON accepts the [timestamp, value] pair form.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Timestamp = int64(pair[0])
	p.Value = pair[1]
	return nil
}

// Series is one labeled, time-ordered sequence of points. A Series with no
// points never appears in a QueryResult.
type Series struct {
	Scope  string  `json:"scope"`
	Points []Point `json:"points"`
}

// ExtractPoint converts one raw upstream data point into a Point. The
// upstream point representation varies by SDK version, so extraction runs an
// ordered chain of typed attempts with first-success semantics: an indexable
// [timestamp_ms, value] pair first, then an attribute-shaped object. It
// reports false for anything unusable; a bad point never aborts its series.
func ExtractPoint(raw any) (Point, bool) {
	if p, ok := pairPoint(raw); ok {
		return p, true
	}
	if p, ok := objectPoint(raw); ok {
		return p, true
	}
	return Point{}, false
}

// pairPoint decodes the indexable pair shape: index 0 is a millisecond
// timestamp, index 1 a numeric value. A zero, negative or absent timestamp is
// a failure of this tier, not a zero-timestamp point.
func pairPoint(raw any) (Point, bool) {
	var ms, val float64

	switch pair := raw.(type) {
	case []*float64:
		if len(pair) < 2 || pair[0] == nil || pair[1] == nil {
			return Point{}, false
		}
		ms, val = *pair[0], *pair[1]
	case []float64:
		if len(pair) < 2 {
			return Point{}, false
		}
		ms, val = pair[0], pair[1]
	case []any:
		if len(pair) < 2 {
			return Point{}, false
		}
		var ok bool
		if ms, ok = asFloat(pair[0]); !ok {
			return Point{}, false
		}
		if val, ok = asFloat(pair[1]); !ok {
			return Point{}, false
		}
	default:
		return Point{}, false
	}

	if ms <= 0 {
		return Point{}, false
	}
	return Point{Timestamp: int64(ms) / 1000, Value: val}, true
}

// objectPoint decodes the attribute shape: timestamp and value fields, each
// defaulting to zero when absent. The point is accepted only if the converted
// timestamp or the value is positive, which guards against synthetic all-zero
// noise from malformed objects.
func objectPoint(raw any) (Point, bool) {
	var ms, val float64

	switch obj := raw.(type) {
	case datadog.ObjectPoint:
		ms, val = obj.Timestamp, obj.Value
	case *datadog.ObjectPoint:
		if obj == nil {
			return Point{}, false
		}
		ms, val = obj.Timestamp, obj.Value
	case map[string]any:
		ms, _ = asFloat(obj["timestamp"])
		val, _ = asFloat(obj["value"])
	default:
		return Point{}, false
	}

	ts := int64(ms) / 1000
	if ts < 0 {
		return Point{}, false
	}
	if ts == 0 && val <= 0 {
		return Point{}, false
	}
	return Point{Timestamp: ts, Value: val}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	default:
		return 0, false
	}
}

// NormalizeSeries converts one raw upstream series into a Series, dropping
// every unusable point. Accepted points keep their original order: upstream
// delivers them in time order and consumers plot them as-is, so no re-sort
// happens here. It reports false when no point survived; callers must then
// omit the series entirely, scope label or not.
func NormalizeSeries(raw datadog.RawSeries) (Series, bool) {
	s := Series{Scope: raw.Scope}
	for _, rp := range raw.Points {
		if p, ok := ExtractPoint(rp); ok {
			s.Points = append(s.Points, p)
		}
	}
	if len(s.Points) == 0 {
		return Series{}, false
	}
	return s, true
}

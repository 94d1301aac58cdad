package normalize

import (
	"github.com/chainpulse/walletlens/internal/domain"
)

// Container keys probed, in order, inside a response object (and again inside
// its "data" object) when looking for the record list.
var containerKeys = []string{"rank", "list", "history", "rows", "trades"}

// Normalize flattens the upstream response envelope into a flat record slice.
// The API wraps its payloads inconsistently: sometimes a bare JSON array,
// sometimes {"data": [...]}, sometimes {"data": {"history": [...]}} and
// friends. A response carrying an explicit "error" field is surfaced as an
// upstream error; any other unrecognized shape yields an empty slice with no
// error, so callers degrade to "no data" instead of failing.
func Normalize(raw any) ([]domain.RawRecord, error) {
	switch v := raw.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		if msg, ok := v["error"]; ok && msg != nil {
			return nil, upstreamFromEnvelope(v, msg)
		}
		if recs, ok := extractList(v); ok {
			return recs, nil
		}
		if data, ok := v["data"]; ok {
			switch d := data.(type) {
			case []any:
				return toRecords(d), nil
			case map[string]any:
				if recs, ok := extractList(d); ok {
					return recs, nil
				}
			}
		}
		return []domain.RawRecord{}, nil
	default:
		return []domain.RawRecord{}, nil
	}
}

// NormalizeObject returns the single payload object of an envelope, for
// endpoints that return one record rather than a list. Missing or non-object
// payloads yield an empty record.
func NormalizeObject(raw any) (domain.RawRecord, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return domain.RawRecord{}, nil
	}
	if msg, ok := m["error"]; ok && msg != nil {
		return nil, upstreamFromEnvelope(m, msg)
	}
	if data, ok := m["data"].(map[string]any); ok {
		return domain.RawRecord(data), nil
	}
	return domain.RawRecord(m), nil
}

func extractList(m map[string]any) ([]domain.RawRecord, bool) {
	for _, k := range containerKeys {
		if list, ok := m[k].([]any); ok {
			return toRecords(list), true
		}
	}
	return nil, false
}

func toRecords(list []any) []domain.RawRecord {
	out := make([]domain.RawRecord, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, domain.RawRecord(m))
		}
	}
	return out
}

func upstreamFromEnvelope(m map[string]any, msg any) *domain.UpstreamError {
	e := &domain.UpstreamError{Kind: domain.KindUpstream}
	if s, ok := msg.(string); ok {
		e.Message = s
	} else {
		e.Message = "upstream error"
	}
	if code, ok := ParseFloat(m["status_code"]); ok {
		e.HTTPStatus = int(code)
	}
	if preview, ok := m["response_text"].(string); ok {
		e.Preview = preview
	}
	return e
}

// Package domain defines the core entities of the wallet analytics pipeline:
// raw upstream records, classified trade events, derived holding intervals,
// and enriched wallet records, along with the store and cache interfaces the
// infrastructure layers implement.
package domain

// RawRecord is an arbitrary JSON object as delivered by the upstream API.
// It has no fixed schema; the same logical field may appear under several
// names across endpoints or API versions. The pipeline never mutates a
// RawRecord it did not create; normalization works on copies.
type RawRecord map[string]any

// Clone returns a shallow copy of the record. Nested containers are shared;
// the pipeline only ever writes top-level keys into clones.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MergeFrom copies the given keys from src into r when they are present,
// overwriting existing values (supplement data wins on conflict).
func (r RawRecord) MergeFrom(src RawRecord, keys ...string) {
	for _, k := range keys {
		if v, ok := src[k]; ok && v != nil {
			r[k] = v
		}
	}
}

// Child returns the nested record under key, or nil when the value is absent
// or not an object.
func (r RawRecord) Child(key string) RawRecord {
	switch v := r[key].(type) {
	case map[string]any:
		return RawRecord(v)
	case RawRecord:
		return v
	default:
		return nil
	}
}

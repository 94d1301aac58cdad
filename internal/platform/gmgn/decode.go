package gmgn

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/json"
	"io"

	"github.com/chainpulse/walletlens/internal/domain"
)

// previewLimit caps the body excerpt attached to parse errors.
const previewLimit = 500

// decodeBody parses a response body into a generic JSON value. The API
// sometimes returns compressed bodies without a usable Content-Encoding
// header, so on a parse failure the body is run through gzip and then raw
// deflate before giving up.
func decodeBody(body []byte) (any, error) {
	if v, err := unmarshalAny(body); err == nil {
		return v, nil
	}
	for _, inflate := range []func([]byte) ([]byte, error){gunzip, deflateRaw} {
		plain, err := inflate(body)
		if err != nil {
			continue
		}
		if v, err := unmarshalAny(plain); err == nil {
			return v, nil
		}
	}
	return nil, &domain.UpstreamError{
		Kind:    domain.KindParse,
		Message: "response body is not valid JSON",
		Preview: preview(body),
	}
}

func unmarshalAny(b []byte) (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func gunzip(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func deflateRaw(b []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(b))
	defer r.Close()
	return io.ReadAll(r)
}

// preview returns a printable excerpt of a body for error reporting.
func preview(b []byte) string {
	if len(b) > previewLimit {
		b = b[:previewLimit]
	}
	return string(b)
}

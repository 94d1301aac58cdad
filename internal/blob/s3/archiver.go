package s3blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/chainpulse/walletlens/internal/domain"
)

// Archiver implements domain.EnvelopeArchiver by uploading raw upstream
// response bodies to an S3-compatible bucket. The upstream schema drifts
// without notice; archived envelopes are the only way to diagnose what a
// field looked like last Tuesday.
//
// Object layout:
//
//	envelopes/{endpoint}/{YYYY}/{MM}/{DD}/{unix-nanos}-{key}.json
type Archiver struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

// NewArchiver creates an Archiver that uploads to the client's configured
// bucket.
func NewArchiver(c *Client) *Archiver {
	return &Archiver{
		client: c.S3(),
		bucket: c.Bucket(),
		now:    time.Now,
	}
}

// Archive uploads one response body. endpoint is the request path and key a
// caller-chosen discriminator; both are sanitized into the object key.
func (a *Archiver) Archive(ctx context.Context, endpoint, key string, body []byte) error {
	path := a.objectKey(endpoint, key)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: archive %s: %w", path, err)
	}
	return nil
}

func (a *Archiver) objectKey(endpoint, key string) string {
	now := a.now().UTC()
	return fmt.Sprintf("envelopes/%s/%s/%d-%s.json",
		sanitize(endpoint),
		now.Format("2006/01/02"),
		now.UnixNano(),
		sanitize(key),
	)
}

// sanitize flattens a request path or discriminator into a single key
// segment.
func sanitize(s string) string {
	s = strings.Trim(s, "/")
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// Compile-time interface check.
var _ domain.EnvelopeArchiver = (*Archiver)(nil)

package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/walletlens/internal/domain"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNormalizeBareList(t *testing.T) {
	recs, err := Normalize(decode(t, `[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, 2.0, recs[1]["a"])
}

func TestNormalizeDataList(t *testing.T) {
	recs, err := Normalize(decode(t, `{"code":0,"data":[{"a":1}]}`))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestNormalizeNestedContainers(t *testing.T) {
	for _, key := range []string{"rank", "list", "history", "rows", "trades"} {
		recs, err := Normalize(decode(t, `{"data":{"`+key+`":[{"a":1}]}}`))
		require.NoError(t, err, "container %s", key)
		assert.Len(t, recs, 1, "container %s", key)
	}
}

func TestNormalizeTopLevelContainer(t *testing.T) {
	recs, err := Normalize(decode(t, `{"rank":[{"a":1},{"a":2}]}`))
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestNormalizeUnrecognizedShapeIsEmptyNotError(t *testing.T) {
	for _, body := range []string{
		`{"data":{"something":123}}`,
		`{"foo":"bar"}`,
		`"just a string"`,
		`42`,
		`null`,
	} {
		recs, err := Normalize(decode(t, body))
		require.NoError(t, err, "body %s", body)
		assert.Empty(t, recs, "body %s", body)
		assert.NotNil(t, recs, "body %s", body)
	}
}

func TestNormalizeExplicitError(t *testing.T) {
	recs, err := Normalize(decode(t, `{"error":"forbidden","status_code":403,"response_text":"<html>denied"}`))
	assert.Nil(t, recs)
	require.Error(t, err)

	var ue *domain.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, domain.KindUpstream, ue.Kind)
	assert.Equal(t, "forbidden", ue.Message)
	assert.Equal(t, 403, ue.HTTPStatus)
	assert.Equal(t, "<html>denied", ue.Preview)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestNormalizeSkipsNonObjectItems(t *testing.T) {
	recs, err := Normalize(decode(t, `[{"a":1},"stray",3]`))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestNormalizeObject(t *testing.T) {
	rec, err := NormalizeObject(decode(t, `{"code":0,"data":{"total_profit":5}}`))
	require.NoError(t, err)
	assert.Equal(t, 5.0, rec["total_profit"])

	rec, err = NormalizeObject(decode(t, `{"total_profit":7}`))
	require.NoError(t, err)
	assert.Equal(t, 7.0, rec["total_profit"])

	rec, err = NormalizeObject(decode(t, `[1,2]`))
	require.NoError(t, err)
	assert.Empty(t, rec)

	_, err = NormalizeObject(decode(t, `{"error":"rate limited","status_code":429}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataValidate(t *testing.T) {
	tests := []struct {
		name    string
		meta    Metadata
		wantErr bool
	}{
		{name: "nil", meta: nil},
		{name: "scalars", meta: Metadata{"author": "kim", "page": 3, "draft": false, "ratio": 0.5, "none": nil}},
		{name: "one level list", meta: Metadata{"tags": []any{"a", "b", 1}}},
		{name: "one level object", meta: Metadata{"origin": map[string]any{"host": "example.org", "port": 443}}},
		{name: "string slice", meta: Metadata{"tags": []string{"a"}}},
		{name: "empty key", meta: Metadata{"": "x"}, wantErr: true},
		{name: "long key", meta: Metadata{strings.Repeat("k", MaxMetadataKeyLen+1): "x"}, wantErr: true},
		{name: "nested list", meta: Metadata{"deep": []any{[]any{"x"}}}, wantErr: true},
		{name: "nested object", meta: Metadata{"deep": map[string]any{"inner": map[string]any{"x": 1}}}, wantErr: true},
		{name: "unsupported type", meta: Metadata{"fn": func() {}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetadataCodec(t *testing.T) {
	encoded, err := EncodeMetadata(Metadata{"b": 2, "a": "x", "tags": []any{"t1", "t2"}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":2,"tags":["t1","t2"]}`, encoded)

	decoded, err := DecodeMetadata(encoded)
	require.NoError(t, err)
	assert.Equal(t, "x", decoded["a"])
	assert.Equal(t, float64(2), decoded["b"])
	assert.Equal(t, []any{"t1", "t2"}, decoded["tags"])

	empty, err := EncodeMetadata(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)

	m, err := DecodeMetadata("")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDecodeMetadataRejectsBadInput(t *testing.T) {
	_, err := DecodeMetadata(`{not json`)
	assert.Error(t, err)

	_, err = DecodeMetadata(`{"deep":{"inner":{"x":1}}}`)
	assert.Error(t, err)
}

func TestEncodeMetadataSizeLimit(t *testing.T) {
	_, err := EncodeMetadata(Metadata{"blob": strings.Repeat("x", MaxMetadataBytes)})
	assert.Error(t, err)
}

func TestSortByScoreIsStable(t *testing.T) {
	results := []SearchResult{
		{ID: "a", Score: 0.2},
		{ID: "b", Score: 0.9},
		{ID: "c", Score: 0.2},
		{ID: "d", Score: 0.5},
	}
	SortByScore(results)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)

	sources := SourcesOf(results)
	require.Len(t, sources, 4)
	assert.Equal(t, "b", sources[0].ID)
	assert.Equal(t, 0.9, sources[0].Score)
}

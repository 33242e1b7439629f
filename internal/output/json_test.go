package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rkty13/match-gennotes/internal/match"
	"github.com/rkty13/match-gennotes/internal/openhumans"
)

func TestWriteMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapped", "alice.json")

	key := "b37-1-1000-A-G"
	matches := []*match.Match{
		{
			Chrom: "1", Pos: 1000, ID: "rs1", Ref: "A", Alt: "G",
			ClinVarData: json.RawMessage(`{"chrom": "1"}`),
			GennotesID:  &key,
		},
	}

	require.NoError(t, WriteMatches(path, matches))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "rs1", got[0]["id"])
	assert.Equal(t, key, got[0]["gennotes_id"])
	assert.Nil(t, got[0]["mv_data"], "unfilled enrichment slots serialize as null")
}

func TestWriteMatchesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, WriteMatches(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestWriteMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")

	results := []openhumans.Result{
		{
			User:          openhumans.User{ID: "1", Username: "alice"},
			Created:       "2017-01-01",
			LocalFilename: "alice_1_2017-01-01_23andme_data",
		},
	}

	require.NoError(t, WriteMetadata(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alice_1_2017-01-01_23andme_data", got[0]["local_filename"])
}

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhere(t *testing.T) {
	w, err := parseWhere(`{"template":"PIKACHU","id":25,"types":["POKEMON_TYPE_ELECTRIC"]}`)
	require.NoError(t, err)
	assert.Equal(t, "PIKACHU", w["template"])
	assert.Equal(t, json.Number("25"), w["id"])
	assert.Equal(t, []any{"POKEMON_TYPE_ELECTRIC"}, w["types"])
}

func TestParseWhere_Invalid(t *testing.T) {
	_, err := parseWhere(`{"template":`)
	assert.Error(t, err)
	_, err = parseWhere(`[1,2]`)
	assert.Error(t, err)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "commands:")
	assert.Empty(t, stdout.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)
}

func TestRun_ConflictingSources(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-snapshot", "x.json", "-db", "locale", "k"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "mutually exclusive")
}

func TestRun_MissingSnapshotFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-snapshot", t.TempDir() + "/missing.json", "locale", "k"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "loading sources")
}

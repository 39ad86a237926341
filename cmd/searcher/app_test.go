package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/docsearch/pkg/errors"
)

const testCorpus = `
stopWords: [and, in, on]
documents:
  - id: 0
    text: white cat and fashionable collar
    ratings: [8, -3]
  - id: 1
    text: fluffy cat fluffy tail
    ratings: [7, 2, 7]
  - id: 2
    text: groomed dog expressive eyes
    ratings: [5, -12, 2, 1]
  - id: 3
    text: groomed starling eugene
    status: BANNED
    ratings: [9]
  - id: 4
    text: tail cat fluffy
    ratings: [1]
queries:
  - fluffy groomed cat
  - starling
`

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCorpus), 0o600))
	return path
}

func executeRootCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestQueryCommand(t *testing.T) {
	corpus := writeCorpus(t)
	stdout, _, err := executeRootCommand(t, "query", "-f", corpus)
	require.NoError(t, err)

	var report queryReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "sequential", report.Policy)
	require.Len(t, report.Queries, 2)
	ids := make([]int, 0)
	for _, d := range report.Queries[0].Results {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []int{1, 4, 2, 0}, ids)
	assert.Empty(t, report.Queries[1].Results)
}

func TestQueryCommandByStatus(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "-p", "parallel", "--status", "banned", "starling")
	require.NoError(t, err)

	var report queryReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "parallel", report.Policy)
	require.Len(t, report.Queries[0].Results, 1)
	assert.Equal(t, 3, report.Queries[0].Results[0].ID)
}

func TestQueryCommandWindowText(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "-w", "-o", "text", "cat", "nothing", "starling")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Results for request: cat")
	assert.Contains(t, stdout, "{ document_id = ")
	assert.Contains(t, stdout, "Total empty requests: 2")
}

func TestQueryCommandBatchJoined(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "--batch", "--joined", "cat", "dog", "cat")
	require.NoError(t, err)

	var report queryReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Len(t, report.Joined, 7)
	assert.Empty(t, report.Queries)
}

func TestQueryCommandStats(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "--stats", "cat", "cat", "owl")
	require.NoError(t, err)

	var report queryReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.NotNil(t, report.Stats)
	assert.Equal(t, int64(3), report.Stats.TotalSearches)
	assert.Equal(t, int64(1), report.Stats.ZeroResultCount)
}

func TestQueryCommandInvalidQuery(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "cat", "--", "--dog")
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))
	assert.Contains(t, stdout, "invalid query token")
}

func TestQueryCommandFlagConflicts(t *testing.T) {
	corpus := writeCorpus(t)
	_, _, err := executeRootCommand(t, "query", "-f", corpus, "--batch", "--status", "banned", "cat")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = executeRootCommand(t, "query", "-f", corpus, "--joined", "cat")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = executeRootCommand(t, "query", "-f", corpus, "-o", "xml", "cat")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMissingCorpus(t *testing.T) {
	t.Setenv("SP_SEARCH_CORPUS_FILE", "")
	_, _, err := executeRootCommand(t, "query", "cat")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMatchCommand(t *testing.T) {
	corpus := writeCorpus(t)
	stdout, _, err := executeRootCommand(t, "match", "-f", corpus, "--id", "1", "fluffy", "groomed", "cat")
	require.NoError(t, err)

	var report matchReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, []string{"cat", "fluffy"}, report.Terms)
	assert.Equal(t, "ACTUAL", report.Status)

	_, _, err = executeRootCommand(t, "match", "-f", corpus, "-p", "parallel", "--id", "42", "cat")
	assert.Equal(t, apperrors.ExitNotFound, apperrors.ExitCode(err))
}

func TestDedupCommand(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "dedup", "-f", writeCorpus(t))
	require.NoError(t, err)

	var report dedupReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, []int{4}, report.Removed)
	assert.Equal(t, []int{0, 1, 2, 3}, report.Remaining)
}

func TestCheckCommand(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "check", "-f", writeCorpus(t))
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status": "up"`)
	assert.Contains(t, stdout, `"index"`)
}

func TestBenchCommand(t *testing.T) {
	stdout, _, err := executeRootCommand(t, "bench", "-f", writeCorpus(t), "--concurrency", "4", "--requests", "20", "--duration", "30s")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total Requests:  20")
	assert.Contains(t, stdout, "P99:")
}

func TestMetricsDump(t *testing.T) {
	t.Setenv("SP_METRICS_ENABLED", "true")
	_, stderr, err := executeRootCommand(t, "query", "-f", writeCorpus(t), "cat")
	require.NoError(t, err)
	assert.Contains(t, stderr, "search_queries_total")
	assert.Contains(t, stderr, "docs_indexed_total 5")
}

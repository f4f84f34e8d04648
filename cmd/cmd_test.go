package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/questa/internal/analysis"
	"github.com/abhisek/questa/internal/equation"
	"github.com/abhisek/questa/internal/hints"
	"github.com/abhisek/questa/internal/store"
)

// isolate points every path and provider setting at the test sandbox.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("QUESTA_DB", filepath.Join(dir, "questa.db"))
	t.Setenv("QUESTA_LLM_PROVIDER", "none")
	t.Setenv("QUESTA_EMBEDDING_PROVIDER", "none")
	t.Setenv("QUESTA_CACHE_BACKEND", "memory")
	t.Setenv("QUESTA_LOG_LEVEL", "error")
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Regexp(t, `^questa \S+\n$`, out)

	old := version
	version = "v1.2.0"
	t.Cleanup(func() { version = old })
	out, err = execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "questa v1.2.0\n", out)
}

func TestAnalyzeJSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "analyze", "--json", "What is the function of mitochondria in a cell?")
	require.NoError(t, err)

	var res analysis.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, analysis.TypeBiology, res.Type)
	assert.Contains(t, res.Keywords, "mitochondria")
}

func TestAnalyzeOverrides(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "analyze", "--type", "physics", "--difficulty", "expert", "What is the function of mitochondria?")
	require.NoError(t, err)
	assert.Contains(t, out, "Type:        physics\n")
	assert.Contains(t, out, "Difficulty:  expert")
}

func TestAnalyzeInvalidType(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "analyze", "--type", "poetry", "Why?")
	var verr *analysis.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAnalyzeStdin(t *testing.T) {
	isolate(t)
	out, err := execute(t, "What is the function of mitochondria in a cell?\n", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "Type:        biology\n")
}

func TestHints(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "hints", "-n", "2", "What is the function of mitochondria in a cell?")
	require.NoError(t, err)
	assert.Contains(t, out, "Hint 1: ")
	assert.Contains(t, out, "Hint 2: ")
	assert.NotContains(t, out, "Hint 3: ")
}

func TestHintsDefaultsFromConfig(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "hints", "--json", "What is the function of mitochondria in a cell?")
	require.NoError(t, err)

	var got []hints.Hint
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Level)
}

func TestHintsMath(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "hints", "-n", "3", "--type", "math", "Solve for x: 2x + 3 = 15")
	require.NoError(t, err)
	assert.Contains(t, out, "Hint 1: Step 1: ")
	assert.Contains(t, out, "Step 3: ")
}

func TestSolve(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "solve", "2x + 3 = 15")
	require.NoError(t, err)
	assert.Contains(t, out, "Equation: 2x + 3 = 15\n")
	assert.Contains(t, out, "Step 1: ")
	assert.True(t, strings.HasSuffix(out, "The solution is x = 6.\n"))
}

func TestSolveJSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "solve", "--json", "x = x")
	require.NoError(t, err)

	var got struct {
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "infinite", got.Outcome)
}

func TestSolveNotAnEquation(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "solve", "What is photosynthesis?")
	var perr *equation.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestSolution(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "solution", "--steps", "--type", "math", "Solve for x: 2x + 3 = 15")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "The solution is x = 6.\n"))
	assert.Contains(t, out, "\nStep 1: ")
}

func TestSolutionWithoutSteps(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "solution", "What is the function of mitochondria in a cell?")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
	assert.NotContains(t, out, "Step 1: ")
}

func TestLLMStatsEmpty(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "llm", "stats")
	require.NoError(t, err)
	assert.Equal(t, "No LLM usage recorded yet.\n", out)
}

func TestLLMListEmpty(t *testing.T) {
	isolate(t)
	out, err := execute(t, "", "llm", "list", "--purpose", "hint")
	require.NoError(t, err)
	assert.Equal(t, "No LLM events found.\n", out)
}

func TestLLMViewMissing(t *testing.T) {
	isolate(t)
	_, err := execute(t, "", "llm", "view", "42")
	require.EqualError(t, err, "event 42 not found")
}

func seedEvents(t *testing.T) int {
	t.Helper()
	s, err := store.Open(os.Getenv("QUESTA_DB"))
	require.NoError(t, err)
	defer s.Close()

	ctx := t.Context()
	repo := s.EventRepo()
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "hint", RequestID: "req-1",
		InputTokens: 120, OutputTokens: 40, LatencyMs: 350, Success: true,
		RequestBody: "[user]\nRephrase", ResponseBody: `"Which organelle makes ATP?"`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, store.LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "solution", RequestID: "req-2",
		LatencyMs: 20000, Success: false, ErrorMessage: "LLM request timed out after 20s",
	}))
	require.NoError(t, repo.AppendDegradation(ctx, store.DegradationEventData{
		Component: "solution", Reason: "timeout",
	}))

	events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{RequestID: "req-1"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0].ID
}

func TestLLMInspection(t *testing.T) {
	isolate(t)
	id := seedEvents(t)

	out, err := execute(t, "", "llm", "list", "--json", "--request", "req-1")
	require.NoError(t, err)
	var listed []eventSummary
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "hint", listed[0].Purpose)
	assert.True(t, listed[0].Success)

	out, err = execute(t, "", "llm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "gpt-4o-mini")

	out, err = execute(t, "", "llm", "view", strconv.Itoa(id))
	require.NoError(t, err)
	assert.Contains(t, out, "req-1")
	assert.Contains(t, out, "Which organelle makes ATP?")
	assert.NotContains(t, out, "Error:")

	out, err = execute(t, "", "llm", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage by Purpose")
	assert.Contains(t, out, "Estimated Cost (USD)")
	assert.Contains(t, out, "Template Fallbacks")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "TOTAL (partial)")
}

func TestQuestionText(t *testing.T) {
	got, err := questionText([]string{"What", "is", "x?"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "What is x?", got)

	got, err = questionText([]string{"-"}, strings.NewReader("  from stdin \n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/questa/internal/llm"
	"github.com/abhisek/questa/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls and template fallbacks",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.RequestID, _ = cmd.Flags().GetString("request")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withStore(cmd, func(repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, summarizeEvents(events))
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}
			renderEventTable(out, events)
			return nil
		})
	},
}

// eventSummary is the list view of one call, without prompt and response bodies.
type eventSummary struct {
	ID           int    `json:"id"`
	Time         string `json:"time"`
	RequestID    string `json:"request_id,omitempty"`
	Purpose      string `json:"purpose"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

func summarizeEvents(events []store.LLMRequestEvent) []eventSummary {
	out := make([]eventSummary, len(events))
	for i, e := range events {
		out[i] = eventSummary{
			ID:           e.ID,
			Time:         e.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			RequestID:    e.RequestID,
			Purpose:      e.Purpose,
			Provider:     e.Provider,
			Model:        e.Model,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			Error:        e.ErrorMessage,
		}
	}
	return out
}

func renderEventTable(out io.Writer, events []store.LLMRequestEvent) {
	st := stylesFor(out)
	header := fmt.Sprintf("%-5s  %-19s  %-8s  %-10s  %-28s  %6s  %6s  %6s  %s",
		"ID", "Time", "Request", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(out, st.heading.Render(header))
	fmt.Fprintln(out, st.muted.Render(rule(len(header))))

	for _, e := range events {
		mark := st.ok.Render("✓")
		if !e.Success {
			mark = st.fail.Render("✗")
		}
		fmt.Fprintf(out, "%-5d  %-19s  %-8s  %-10s  %-28s  %6d  %6d  %6d  %s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			truncate(e.RequestID, 8),
			truncate(e.Purpose, 10),
			truncate(e.Model, 28),
			e.InputTokens, e.OutputTokens, e.LatencyMs,
			mark,
		)
	}
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withStore(cmd, func(repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}
			renderEvent(cmd.OutOrStdout(), e)
			return nil
		})
	},
}

func renderEvent(out io.Writer, e *store.LLMRequestEvent) {
	st := stylesFor(out)
	fields := [][2]string{
		{"ID", strconv.Itoa(e.ID)},
		{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
		{"Request", e.RequestID},
		{"Purpose", e.Purpose},
		{"Provider", e.Provider},
		{"Model", e.Model},
		{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
		{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		{"Success", strconv.FormatBool(e.Success)},
		{"Error", e.ErrorMessage},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(out, "%s %s\n", st.label.Render(fmt.Sprintf("%-9s", f[0]+":")), f[1])
	}

	for _, section := range [][2]string{{"REQUEST", e.RequestBody}, {"RESPONSE", e.ResponseBody}} {
		body := section[1]
		if body == "" {
			body = st.muted.Render("(not captured)")
		}
		fmt.Fprintf(out, "\n%s\n%s\n%s\n", st.heading.Render(section[0]), st.muted.Render(rule(60)), body)
	}
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage, estimated cost and template fallbacks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(repo store.EventRepo) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
			} else {
				renderPurposeUsage(out, byPurpose)

				byModel, err := repo.LLMUsageByModel(ctx)
				if err != nil {
					return fmt.Errorf("query model usage: %w", err)
				}
				renderModelCost(out, byModel)
			}

			counts, err := repo.DegradationCounts(ctx)
			if err != nil {
				return fmt.Errorf("query degradations: %w", err)
			}
			renderDegradations(out, counts)
			return nil
		})
	},
}

func renderPurposeUsage(out io.Writer, usage []store.PurposeUsage) {
	st := stylesFor(out)
	fmt.Fprintln(out, st.heading.Render("Usage by Purpose"))
	fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Fprintln(out, st.muted.Render(rule(72)))

	var total store.PurposeUsage
	for _, u := range usage {
		fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
			u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
	}
	fmt.Fprintln(out, st.muted.Render(rule(72)))
	fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d\n",
		"TOTAL", total.Calls, total.InputTokens, total.OutputTokens, total.InputTokens+total.OutputTokens)
}

func renderModelCost(out io.Writer, usage []store.ModelUsage) {
	if len(usage) == 0 {
		return
	}
	st := stylesFor(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.heading.Render("Estimated Cost (USD)"))
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(out, st.muted.Render(rule(76)))

	var sum float64
	var unpriced []string
	for _, u := range usage {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			sum += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(out, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}
	fmt.Fprintln(out, st.muted.Render(rule(76)))

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(out, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(sum))
	if len(unpriced) > 0 {
		fmt.Fprintf(out, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

// renderDegradations shows how often each component fell back to templates.
func renderDegradations(out io.Writer, counts []store.DegradationCount) {
	if len(counts) == 0 {
		return
	}
	st := stylesFor(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.heading.Render("Template Fallbacks"))
	fmt.Fprintf(out, "%-14s  %-18s  %5s\n", "Component", "Reason", "Count")
	fmt.Fprintln(out, st.muted.Render(rule(41)))
	for _, c := range counts {
		fmt.Fprintf(out, "%-14s  %-18s  %5d\n", c.Component, c.Reason, c.Count)
	}
}

// withStore opens the event database for the duration of fn.
func withStore(cmd *cobra.Command, fn func(store.EventRepo) error) error {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	return fn(s.EventRepo())
}

func rule(n int) string {
	return strings.Repeat("─", n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (hint, solution)")
	llmListCmd.Flags().String("request", "", "Only show calls made for this request ID")
	llmListCmd.Flags().Bool("json", false, "Print the events as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

// Package cli — check.go implements the "refcell check" command.
//
// The check command statically analyzes a scenario without running it:
// structural validation first, then ownership-graph analysis that proves
// the strong edges acyclic or reports one cycle witness and the edge to
// demote to weak. It is the tool's answer to "will this scenario leak?"
// before any allocation happens.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/refcell/internal/graph"
	"github.com/mmr-tortoise/refcell/internal/model"
	"github.com/mmr-tortoise/refcell/internal/scenario"
)

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <scenario-file>",
		Short: "Validate a scenario and detect strong-reference cycles",
		Long: `Validate a scenario file and analyze its ownership graph without
executing any step.

A cycle of strong links means every allocation on it leaks; check reports
one witness cycle and suggests the link to demote to weak.

Examples:
  refcell check cycle.yaml
  refcell check tree.yaml --json`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0])
		},
	}
}

// runCheck is the main logic function for the check command.
func runCheck(path string) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	VerboseLog("Loaded scenario %q (%d steps)", s.Name, len(s.Steps))

	if verrs := scenario.Validate(s); len(verrs) > 0 {
		printValidationErrors(verrs)
		return model.NewCLIError(model.ExitValidationFailed,
			fmt.Sprintf("scenario failed validation with %d error(s)", len(verrs)))
	}

	report := graph.Analyze(s)

	if IsJSONOutput() {
		printCheckJSON(s, report)
	} else {
		printCheckText(s, report)
	}

	if report.Leaks() {
		return model.NewCLIError(model.ExitLeakDetected,
			fmt.Sprintf("strong-reference cycle: %s", FormatCycle(report.Cycle)))
	}
	return nil
}

// checkJSON is the JSON output structure of the check command.
type checkJSON struct {
	Scenario    string     `json:"scenario"`
	Steps       int        `json:"steps"`
	Allocations []string   `json:"allocations"`
	StrongEdges []edgeJSON `json:"strongEdges"`
	WeakEdges   []edgeJSON `json:"weakEdges"`
	Cycle       []string   `json:"cycle,omitempty"`
	Demote      *edgeJSON  `json:"demote,omitempty"`
}

// edgeJSON is one ownership edge in JSON output.
type edgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

func toEdgeJSON(edges []graph.Edge) []edgeJSON {
	// Empty slice instead of nil so JSON output shows [] rather than null.
	out := make([]edgeJSON, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeJSON{From: e.From, To: e.To, Kind: e.Kind.String()})
	}
	return out
}

func printCheckJSON(s *model.Scenario, r *graph.Report) {
	result := checkJSON{
		Scenario:    s.Name,
		Steps:       len(s.Steps),
		Allocations: r.Allocations,
		StrongEdges: toEdgeJSON(r.StrongEdges),
		WeakEdges:   toEdgeJSON(r.WeakEdges),
		Cycle:       r.Cycle,
	}
	if r.Demote != nil {
		result.Demote = &edgeJSON{From: r.Demote.From, To: r.Demote.To, Kind: r.Demote.Kind.String()}
	}
	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

func printCheckText(s *model.Scenario, r *graph.Report) {
	fmt.Printf("scenario:    %s (%d steps)\n", s.Name, len(s.Steps))
	fmt.Printf("allocations: %d\n", len(r.Allocations))
	fmt.Printf("links:       %d strong, %d weak\n", len(r.StrongEdges), len(r.WeakEdges))

	if !r.Leaks() {
		color.New(color.FgGreen).Println("No strong-reference cycles.")
		return
	}

	color.New(color.FgRed).Printf("cycle:       %s\n", FormatCycle(r.Cycle))
	if r.Demote != nil {
		fmt.Printf("suggestion:  demote the link %s → %s to weak\n", r.Demote.From, r.Demote.To)
	}
}

// FormatCycle renders a cycle witness as "a → b → a".
// Exported for testing (tested in run_test.go).
func FormatCycle(cycle []string) string {
	return strings.Join(cycle, " → ")
}

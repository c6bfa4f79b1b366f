// Package cli — demos.go implements the "refcell demos" command.
//
// Without arguments it lists the built-in demo scenarios with their
// descriptions; with a name it prints that demo's scenario file to
// stdout, so `refcell demos cycle > cycle.yaml` produces a runnable,
// editable starting point.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/refcell/internal/scenario"
)

// NewDemosCommand creates the "demos" cobra command.
func NewDemosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demos [name]",
		Short: "List built-in demo scenarios or print one",
		Long: `List the built-in demo scenarios, or print the named demo's scenario
file to stdout.

Each demo illustrates one concept: sharing (cons-list), interior
mutability (shared-list), borrow violations (limit-tracker), weak back
edges (tree), and the strong-cycle leak (cycle).

Examples:
  refcell demos
  refcell demos cycle
  refcell demos cycle > cycle.yaml`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runDemoPrint(args[0])
			}
			return runDemoList()
		},
	}
}

// runDemoPrint writes the named demo's raw scenario file to stdout.
func runDemoPrint(name string) error {
	_, raw, err := scenario.Demo(name)
	if err != nil {
		return err // Demo already returns CLIError with ExitUnknownDemo
	}
	fmt.Print(string(raw))
	return nil
}

// demoJSON is the JSON output structure for one demo in the list.
type demoJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Steps       int    `json:"steps"`
}

// runDemoList prints the demo table (text) or array (JSON).
func runDemoList() error {
	names := scenario.DemoNames()

	demos := make([]demoJSON, 0, len(names))
	for _, name := range names {
		s, _, err := scenario.Demo(name)
		if err != nil {
			return err
		}
		demos = append(demos, demoJSON{Name: name, Description: s.Description, Steps: len(s.Steps)})
	}

	if IsJSONOutput() {
		result := struct {
			Demos []demoJSON `json:"demos"`
		}{Demos: demos}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%-15s %-6s %s\n", "NAME", "STEPS", "DESCRIPTION")
	for _, d := range demos {
		fmt.Printf("%-15s %-6d %s\n", d.Name, d.Steps, d.Description)
	}
	return nil
}

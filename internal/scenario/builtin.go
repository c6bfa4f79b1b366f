// builtin.go ships the demo scenarios embedded in the binary. Each demo
// illustrates one concept: sharing, interior mutability, borrow
// violations, weak back edges, and the strong-cycle leak.
package scenario

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/mmr-tortoise/refcell/internal/model"
)

// demoFS embeds the built-in demo scenario files. Demos are plain YAML
// scenarios — everything the demos command can do, a user file can do.
//
//go:embed demos/*.yaml
var demoFS embed.FS

// DemoNames returns the names of all built-in demos, sorted.
func DemoNames() []string {
	entries, err := demoFS.ReadDir("demos")
	if err != nil {
		// The embed is compiled in; a read failure is a build defect.
		panic(fmt.Sprintf("scenario: reading embedded demos: %v", err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Demo returns the parsed scenario and the raw file contents for the
// named built-in demo. The raw bytes are exposed so the demos command
// can print a runnable scenario file to stdout.
//
// Returns a CLIError with ExitUnknownDemo if no such demo exists.
func Demo(name string) (*model.Scenario, []byte, error) {
	data, err := demoFS.ReadFile("demos/" + name + ".yaml")
	if err != nil {
		return nil, nil, model.NewCLIError(
			model.ExitUnknownDemo,
			fmt.Sprintf("unknown demo %q (available: %s)", name, strings.Join(DemoNames(), ", ")),
		)
	}

	s, err := Parse(data, ".yaml")
	if err != nil {
		// Embedded demos are validated by the test suite; this is a
		// build defect, not a user error.
		return nil, nil, fmt.Errorf("embedded demo %q is malformed: %w", name, err)
	}
	return s, data, nil
}

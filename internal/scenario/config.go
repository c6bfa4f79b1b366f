package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/refcell/internal/model"
)

// Load reads a scenario file and parses it into a model.Scenario.
//
// The format is chosen by file extension: .yaml/.yml are parsed with
// yaml.v3, .json/.jsonc are stripped of comments and trailing commas
// with github.com/tidwall/jsonc and then parsed with encoding/json.
// JSONC support exists because hand-written teaching scenarios benefit
// from inline commentary the same way devcontainer-style configs do.
//
// Returns a CLIError with ExitScenarioNotFound if the file does not
// exist and ExitParseError if the contents do not parse.
func Load(path string) (*model.Scenario, error) {
	// os.ReadFile handles the open-read-close lifecycle in a single call.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitScenarioNotFound,
				fmt.Sprintf("scenario file not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitParseError,
			fmt.Sprintf("failed to parse scenario %s", path),
			err,
		)
	}
	return s, nil
}

// Parse decodes scenario bytes in the format implied by ext.
// Exported separately from Load so embedded demos (which never touch the
// filesystem) share the same decoding path.
func Parse(data []byte, ext string) (*model.Scenario, error) {
	var s model.Scenario

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".json", ".jsonc":
		// Strip comments (// and /* */) and trailing commas first;
		// encoding/json then silently ignores unknown fields, which is
		// the desired behavior for forward compatibility.
		clean := jsonc.ToJSON(data)
		if err := json.Unmarshal(clean, &s); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format %q (use .yaml, .yml, .json, or .jsonc)", ext)
	}

	return &s, nil
}

// Package scenario handles loading and static validation of ownership
// scenario files.
//
// Scenarios are declarative step lists replayed against the rc and cell
// packages by internal/interp. Files may be YAML (.yaml/.yml) or JSONC
// (.json/.jsonc); JSONC comments are stripped with
// github.com/tidwall/jsonc before parsing with the standard
// encoding/json library, and YAML is parsed with gopkg.in/yaml.v3.
//
// Key responsibilities:
//   - Load and parse scenario files (format picked by extension)
//   - Statically validate step structure and handle bindings before a run
//   - Ship the built-in demo scenarios (go:embed) behind the demos command
package scenario

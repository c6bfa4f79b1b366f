// Package model defines the domain types and value objects for the
// refcell CLI.
//
// This package contains pure data structures with no external
// dependencies: the scenario step vocabulary (OpKind), handle-name
// validation, and the exit-code machinery (ExitCode, CLIError) the CLI
// layer uses to translate domain errors into OS process exit codes.
//
// The scenario file format itself (YAML/JSONC loading, structural
// validation) lives in internal/scenario; this package only owns the
// types those files decode into.
package model

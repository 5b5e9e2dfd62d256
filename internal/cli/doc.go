// Package cli wires together the Cobra command tree for the vuln-analyzer
// binary.
//
// It defines the root command and its subcommands (analyze, model check,
// config, version), binds flags onto the layered configuration, loads the
// model handle once per run, drives the analyzer and returns the process
// exit code.
package cli

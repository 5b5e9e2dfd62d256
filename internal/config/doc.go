// Package config loads and merges vuln-analyzer configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (VULN_ANALYZER_MODEL, VULN_ANALYZER_TOKENS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/vuln-analyzer/config.yaml, or --config)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged and validated [Config], [Save] to write a
// config file, and [SetField] to update a single key.
package config

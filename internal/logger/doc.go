// Package logger builds the structured hclog logger used for diagnostics.
// The level comes from VULN_ANALYZER_LOG_LEVEL, then the config file, and
// defaults to info; --verbose lowers it to debug.
package logger

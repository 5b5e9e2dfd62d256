// Package sources selects the C and C++ files a run analyzes.
//
// Command line arguments are expanded (directories are walked), or the file
// list comes from git: every tracked source, or the sources changed since a
// revision. Include and exclude globs narrow the selection.
package sources

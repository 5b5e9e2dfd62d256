package sources

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the C and C++ source and header extensions picked up when
// expanding directories or git file lists.
var Extensions = []string{
	".c", ".h", ".cc", ".cpp", ".cxx", ".c++", ".hh", ".hpp", ".hxx", ".inl", ".ipp", ".tpp",
}

// Options filter the selected files.
type Options struct {
	// Include keeps only files matching one of these globs. Empty keeps all.
	Include []string
	// Exclude drops files matching any of these globs.
	Exclude []string
}

// IsSource reports whether path has a C or C++ extension.
func IsSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Expand resolves command line arguments to files. Directories are walked
// for C and C++ sources in lexical order; any other argument is kept as
// given, in order, so that a missing file is still reported by the
// analyzer. Filters apply only to files found by walking.
func Expand(args []string, opts Options) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := walkDir(arg, opts)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkDir(root string, opts Options) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && keep(path, opts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Tracked returns the git-tracked C and C++ files of the repository in the
// current directory.
func Tracked(opts Options) ([]string, error) {
	out, err := gitOutput("ls-files")
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	return filterList(out, opts), nil
}

// Changed returns the C and C++ files added, copied, modified or renamed
// between base and the working tree.
func Changed(base string, opts Options) ([]string, error) {
	out, err := gitOutput("diff", "--name-only", "--diff-filter=ACMR", base)
	if err != nil {
		return nil, fmt.Errorf("git diff %s: %w", base, err)
	}
	return filterList(out, opts), nil
}

func filterList(out string, opts Options) []string {
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !keep(line, opts) {
			continue
		}
		files = append(files, line)
	}
	sort.Strings(files)
	return files
}

func keep(path string, opts Options) bool {
	if !IsSource(path) {
		return false
	}
	if len(opts.Include) > 0 && !MatchesAny(path, opts.Include) {
		return false
	}
	return !MatchesAny(path, opts.Exclude)
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches at any depth.
func MatchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		clean := strings.TrimPrefix(pattern, "**/")
		if clean != pattern {
			matched, err = filepath.Match(clean, filepath.Base(path))
			if err == nil && matched {
				return true
			}
			matched, err = filepath.Match(clean, path)
			if err == nil && matched {
				return true
			}
		}
		// "dir/**" matches everything below dir; "**/dir/**" also matches
		// below a nested dir.
		if prefix, ok := strings.CutSuffix(clean, "/**"); ok {
			if strings.HasPrefix(path, prefix+"/") {
				return true
			}
			if clean != pattern && strings.Contains(path, "/"+prefix+"/") {
				return true
			}
		}
	}
	return false
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

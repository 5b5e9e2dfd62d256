package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/vuln-analyzer/internal/llm"
)

const systemPrompt = `You are a senior application security engineer performing a secure code review of C and C++ source code. Your job is to list every security vulnerability in the code you are given.

Look for memory-safety bugs (buffer overflows, out-of-bounds reads and writes, use-after-free, double free, null pointer dereference, uninitialized memory), integer overflow and signedness errors, format string bugs, command and path injection, race conditions, unchecked return values, insecure or deprecated API usage, hardcoded credentials, and resource leaks.

Output rules:
1. Emit one line per vulnerability, exactly in this form:
   Line <n>: <vulnerability type> — <cause> — FIX: <fix>
2. <n> is the absolute line number in the original file.
3. Keep each line short and specific. Do not repeat the source code.
4. No headings, no numbering, no markdown, no commentary, no blank lines.
5. If you find nothing, respond with exactly: ` + Sentinel

// PromptBuilder turns a chunk into a model prompt.
type PromptBuilder struct {
	Path        string
	Rules       *Rules
	NumberLines bool
}

// SystemPrompt returns the persona and output contract.
func SystemPrompt() string {
	return systemPrompt
}

// Build constructs the system and user messages for one chunk.
func (b PromptBuilder) Build(c Chunk) llm.Prompt {
	system := systemPrompt
	if section := BuildRulesPromptSection(b.Rules); section != "" {
		system += "\n" + section
	}
	return llm.Prompt{
		System: system,
		User:   b.buildUser(c),
	}
}

func (b PromptBuilder) buildUser(c Chunk) string {
	var sb strings.Builder

	lang := detectLanguage(b.Path)
	if lang == "" {
		lang = "C/C++"
	}
	fmt.Fprintf(&sb, "Review the following %s code", lang)
	if b.Path != "" {
		fmt.Fprintf(&sb, " from %s", filepath.Base(b.Path))
	}
	sb.WriteString(".\n")
	fmt.Fprintf(&sb, "The first line of this block is line %d of the file (the block covers lines %d-%d). ",
		c.StartLine, c.StartLine, c.EndLine)
	sb.WriteString("Report absolute file line numbers.\n")
	if b.NumberLines {
		sb.WriteString("Each line is prefixed with its line number and a '|' that are not part of the code.\n")
	}

	sb.WriteString("\n--- BEGIN CODE ---\n")
	if b.NumberLines {
		writeNumbered(&sb, c)
	} else {
		sb.WriteString(c.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("--- END CODE ---\n\n")
	fmt.Fprintf(&sb, "List every vulnerability using the required line format, or respond with exactly: %s\n", Sentinel)

	return sb.String()
}

func writeNumbered(sb *strings.Builder, c Chunk) {
	width := len(fmt.Sprint(c.EndLine))
	for i, line := range strings.Split(c.Text, "\n") {
		fmt.Fprintf(sb, "%*d| %s\n", width, c.StartLine+i, line)
	}
}

func detectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return "C"
	case ".cc", ".cpp", ".cxx", ".c++", ".hpp", ".hh", ".hxx", ".inl", ".ipp", ".tpp":
		return "C++"
	case ".h":
		return "C/C++ header"
	default:
		return ""
	}
}

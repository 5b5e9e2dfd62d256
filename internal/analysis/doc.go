// Package analysis implements the per-file vulnerability scanning pipeline.
//
// A source file is read and split into chunks sized for the model
// ([Chunker]). Each chunk becomes a prompt ([PromptBuilder]) that asks for
// findings in a fixed one-line format. The model's text is parsed
// ([Parser]), findings from all chunks are deduplicated and ordered by line
// ([Aggregate]), and the result is rendered as a report ([Format]).
// [Analyzer] drives the pipeline over many files against one long-lived
// model handle. A failed chunk or unreadable file is recorded and the run
// moves on.
package analysis

package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteSummary renders a per-file table of chunks, failed chunks and
// findings with a totals footer.
func WriteSummary(w io.Writer, run *Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Chunks", "Failed", "Findings", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
	})

	var chunks, failed, findings, failedFiles int
	for _, r := range run.Results {
		if r.Err != nil || r.Report == nil {
			failedFiles++
			table.Append([]string{r.Path, "-", "-", "-", "error"})
			continue
		}
		rep := r.Report
		chunks += rep.Chunks
		failed += rep.FailedChunks
		findings += len(rep.Findings)

		status := "ok"
		if rep.FailedChunks > 0 {
			status = "partial"
		}
		table.Append([]string{
			rep.Path,
			fmt.Sprintf("%d", rep.Chunks),
			fmt.Sprintf("%d", rep.FailedChunks),
			fmt.Sprintf("%d", len(rep.Findings)),
			status,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(run.Results)),
		fmt.Sprintf("%d", chunks),
		fmt.Sprintf("%d", failed),
		fmt.Sprintf("%d", findings),
		fmt.Sprintf("%d errors", failedFiles),
	})
	table.Render()
}

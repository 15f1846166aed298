package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
	"github.com/olekukonko/tablewriter"
)

func formatBytes(n int64) string {
	const unit = 1024
	gb := n / (unit * unit * unit)
	mb := n / (unit * unit)
	kb := n / unit

	if gb > 1 {
		return fmt.Sprintf("%d GB", gb)
	}
	if mb > 1 {
		return fmt.Sprintf("%d MB", mb)
	}
	if kb > 1 {
		return fmt.Sprintf("%d KB", kb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func formatSnapshot(s downloads.Snapshot) string {
	line := fmt.Sprintf("%s  %-18s %s  %s / %s", s.ID, s.Status, s.FileName, formatBytes(s.BytesReceived), totalColumn(s))
	if s.MimeType != "" {
		line += "  " + s.MimeType
	}
	if s.Err != nil {
		line += "  error: " + s.Err.Error()
	}
	return line
}

func totalColumn(s downloads.Snapshot) string {
	if s.Status >= downloads.StatusPointersResolved && s.Err == nil {
		return formatBytes(s.TotalBytes)
	}
	return "?"
}

// renderFiles writes one row per tracked file.
func renderFiles(w io.Writer, files []downloads.Snapshot) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Status", "File", "Received", "Total", "Type", "Error"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")

	for _, s := range files {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		table.Append([]string{
			s.ID,
			s.Status.String(),
			s.FileName,
			formatBytes(s.BytesReceived),
			totalColumn(s),
			s.MimeType,
			errText,
		})
	}
	table.Render()
}

func formatProgress(progress, speed float64) string {
	return fmt.Sprintf("%.1f%%  %s/s", progress*100, formatBytes(int64(speed)))
}

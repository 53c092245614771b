package views

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable writes the page for a terminal: the list as a table, then the
// detail block if one is selected.
func RenderTable(w io.Writer, page Page, style table.Style) error {
	switch {
	case page.Loading():
		_, err := fmt.Fprintln(w, "Loading videos…")
		return err
	case page.Failed():
		_, err := fmt.Fprintf(w, "Could not load videos: %s\n", page.Failure)
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(style)
	tw.SetTitle(page.SubHeading)
	tw.AppendHeader(table.Row{"ID", "Video"})
	for _, r := range page.Rows {
		tw.AppendRow(table.Row{strconv.FormatInt(r.Key, 10), r.Label})
	}
	if page.Empty() {
		tw.AppendFooter(table.Row{"", "No videos available."})
	}
	tw.Render()

	if page.Detail == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n%s\n", page.Detail.Title, page.Detail.Speaker, page.Detail.MediaURL)
	return err
}

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/cwriter"
	"github.com/vbauerster/mpb/v8/decor"

	"shirodl/src/downloader"
)

var (
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	ignorableStyle = lipgloss.NewStyle().Faint(true)
	fatalStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// renderer prints one line per completed task. On a terminal it also draws
// a task counter bar and routes the lines through the bar container, so
// they land above the bar instead of being overwritten by its redraws.
// Report must not be called concurrently; the downloader already
// serializes its callbacks.
type renderer struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	out      io.Writer
}

func newRenderer(total int, out, barOutput io.Writer) *renderer {
	return newRendererMode(total, out, barOutput, cwriter.New(barOutput).IsTerminal())
}

func newRendererMode(total int, out, barOutput io.Writer, interactive bool) *renderer {
	if !interactive {
		return &renderer{out: out}
	}

	progress := mpb.New(mpb.WithOutput(barOutput), mpb.WithWidth(40), mpb.WithAutoRefresh())

	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("tasks", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Name(" "),
			decor.Elapsed(decor.ET_STYLE_GO),
		),
	)

	return &renderer{
		progress: progress,
		bar:      bar,
		out:      out,
	}
}

// Report prints the outcome of a task and advances the bar.
func (renderer *renderer) Report(report downloader.Report) {
	line := formatReport(report) + "\n"

	if renderer.progress == nil {
		io.WriteString(renderer.out, line)

		return
	}

	_, err := io.WriteString(renderer.progress, line)
	if err != nil {
		io.WriteString(renderer.out, line)
	}

	renderer.bar.Increment()
}

// Wait marks the bar as complete and waits for the final render.
func (renderer *renderer) Wait() {
	if renderer.progress == nil {
		return
	}

	renderer.bar.SetTotal(-1, true)
	renderer.progress.Wait()
}

func formatReport(report downloader.Report) string {
	if report.Err == nil {
		return doneStyle.Render("Done " + report.URL)
	}

	msg := fmt.Sprintf("Failed %s [%v]", report.URL, report.Err)
	if downloader.IsIgnorable(report.Err) {
		return ignorableStyle.Render(msg)
	}

	return fatalStyle.Render(msg)
}

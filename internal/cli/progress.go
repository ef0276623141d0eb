package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/mahmoud-slama/creditapp/internal/cart"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/schollz/progressbar/v3"
)

// SubmitReporter draws a progress bar while cart items are submitted.
// Its Progress method plugs into cart.SubmitOptions.
type SubmitReporter struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	failed int
	mu     sync.Mutex
}

// NewSubmitReporter creates a reporter for total items.
func NewSubmitReporter(w io.Writer, total int) *SubmitReporter {
	r := &SubmitReporter{writer: w}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan]Submitting purchases[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
	return r
}

// Progress advances the bar by one item.
func (r *SubmitReporter) Progress(res cart.ItemResult, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Status == cart.StatusFailed {
		r.failed++
		r.bar.Describe(fmt.Sprintf("[red]Submitting purchases (%d failed)[reset]", r.failed))
	}
	if err := r.bar.Add(1); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

// Finish completes the bar, for example after a cancellation.
func (r *SubmitReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.bar.Finish(); err != nil {
		slog.Debug("Failed to finish progress bar", "error", err)
	}
}

// RenderBatch lists the outcome of every submitted item.
func RenderBatch(res cart.BatchResult) string {
	t := NewTable("#", "Product", "Qty", "Total", "Result").AlignRight(0, 2, 3)
	for _, r := range res.Results {
		outcome := SuccessStyle.Render(SuccessIcon + " created")
		switch r.Status {
		case cart.StatusFailed:
			outcome = ErrorStyle.Render(ErrorIcon + " " + common.UserMessage(r.Err))
		case cart.StatusSkipped:
			outcome = WarningStyle.Render("skipped")
		}
		t.Add(strconv.Itoa(r.Index+1), r.Item.Name, strconv.Itoa(r.Item.Quantity), r.Item.Total.StringFixed(2), outcome)
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped",
		len(res.Succeeded()), len(res.Failed()), len(res.Skipped()))
	if res.OK() {
		return t.Render() + "\n" + FormatSuccess(summary)
	}
	return t.Render() + "\n" + FormatWarning(summary)
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/cli"
	"github.com/mahmoud-slama/creditapp/internal/listing"
	"github.com/mahmoud-slama/creditapp/internal/views"
	"github.com/spf13/cobra"
)

// out prints one line of user-facing output.
func out(cmd *cobra.Command, format string, args ...any) {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...); err != nil {
		slog.Debug("Failed to write output", "error", err)
	}
}

func success(cmd *cobra.Command, format string, args ...any) {
	out(cmd, "%s", cli.FormatSuccess(fmt.Sprintf(format, args...)))
}

func warn(cmd *cobra.Command, format string, args ...any) {
	out(cmd, "%s", cli.FormatWarning(fmt.Sprintf(format, args...)))
}

func info(cmd *cobra.Command, format string, args ...any) {
	out(cmd, "%s", cli.FormatInfo(fmt.Sprintf(format, args...)))
}

// listFlags are the flags shared by listing commands.
type listFlags struct {
	search   string
	sort     string
	price    string
	amount   string
	date     string
	page     int
	pageSize int
	desc     bool
}

type filterFlag int

const (
	priceFilter filterFlag = 1 << iota
	amountFilter
	dateFilter
)

func addListFlags(cmd *cobra.Command, f *listFlags, sortKeys []string, filters filterFlag) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive search")
	cmd.Flags().StringVar(&f.sort, "sort", "", fmt.Sprintf("sort key %v", sortKeys))
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (default listing.page_size)")
	if filters&priceFilter != 0 {
		cmd.Flags().StringVar(&f.price, "price", "", "price bracket (all, low, medium, high)")
	}
	if filters&amountFilter != 0 {
		cmd.Flags().StringVar(&f.amount, "amount", "", "amount bracket (all, low, medium, high)")
	}
	if filters&dateFilter != 0 {
		cmd.Flags().StringVar(&f.date, "date", "", "date window (all, today, week, month, year)")
	}
}

func (f listFlags) request(defaultPageSize int) views.Request {
	size := f.pageSize
	if size <= 0 {
		size = defaultPageSize
	}
	return views.Request{
		Search:   f.search,
		Sort:     f.sort,
		Desc:     f.desc,
		Page:     f.page,
		PageSize: size,
	}
}

func (f listFlags) filters() (views.Filters, error) {
	return views.ParseFilters(f.price, f.amount, f.date, time.Now())
}

// column renders one field of a listing table.
type column[T any] struct {
	value      func(T) string
	title      string
	right      bool
	searchable bool
}

// renderListing runs the pipeline over items and prints the page as a table,
// followed by the "n of m" count and the page position.
func renderListing[T any](cmd *cobra.Command, cfg listing.Config[T], req views.Request, filters views.Filters, preds []listing.Predicate[T], items []T, columns []column[T]) error {
	pipeline, err := views.NewPipeline(cfg, req, preds...)
	if err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	res := pipeline.Apply(items)

	if res.Empty() {
		if res.Total == 0 {
			info(cmd, "No %s yet.", cfg.Noun)
		} else {
			info(cmd, "No %s match the current search and filters.", cfg.Noun)
		}
		return nil
	}

	headers := make([]string, len(columns))
	var right []int
	for i, c := range columns {
		headers[i] = c.title
		if c.right {
			right = append(right, i)
		}
	}
	t := cli.NewTable(headers...).AlignRight(right...)
	for _, item := range res.Page.Items {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = c.value(item)
			if c.searchable && req.Search != "" {
				cells[i] = cli.Highlight(cells[i], req.Search)
			}
		}
		t.Add(cells...)
	}
	out(cmd, "%s", t.Render())

	footer := fmt.Sprintf("%s · page %d/%d · sorted by %s", res.Summary(cfg.Noun), res.Page.Number, res.Page.TotalPages, res.Sort)
	if d := filters.Describe(); d != "" {
		footer += " · " + d
	}
	out(cmd, "%s", cli.SubtleStyle.Render(footer))
	return nil
}

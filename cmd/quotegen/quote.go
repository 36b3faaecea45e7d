package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-generator/internal/app"
)

var quoteTimeout time.Duration

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch the quotes once and print a random one",
	RunE:  runQuote,
}

func init() {
	quoteCmd.Flags().DurationVar(&quoteTimeout, "timeout", 15*time.Second, "How long to wait for the quotes to load")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	source, err := newQuoteSource(cfg, logger)
	if err != nil {
		return err
	}

	widget := app.NewWidget(app.WidgetConfig{
		Source:        source,
		ReselectDelay: cfg.Widget.ReselectDelay,
		Logger:        logger,
	})
	defer widget.Unmount()

	view, err := settle(cmd.Context(), widget, quoteTimeout)
	if err != nil {
		return err
	}

	printView(cmd.OutOrStdout(), view)

	if view.Error != "" {
		return errors.New("no quote available")
	}

	return nil
}

// settle mounts w and waits for its initial fetch to finish.
func settle(ctx context.Context, w *app.Widget, timeout time.Duration) (app.View, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	w.Mount(ctx)

	select {
	case <-w.Settled():
		return w.View(), nil
	case <-ctx.Done():
		return app.View{}, fmt.Errorf("waiting for quotes: %w", ctx.Err())
	}
}

func printView(out io.Writer, view app.View) {
	switch {
	case view.Error != "":
		color.New(color.FgRed).Fprintln(out, view.Error)
	case view.Quote != nil:
		color.New(color.FgCyan, color.Italic).Fprintf(out, "%q\n", view.Quote.Content)
		color.New(color.FgYellow, color.Bold).Fprintf(out, "  - %s\n", view.Quote.Author)
		color.New(color.Faint).Fprintln(out, "  "+view.Quote.ImageURL)
	default:
		color.New(color.Faint).Fprintln(out, app.ButtonLabelLoading)
	}
}

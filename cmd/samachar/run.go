package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Adda-Baaj/bazaar-samachar/internal/bot"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll for news and answer /start until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		responder := bot.NewResponder(a.telegram, cfg.Telegram.PollTimeout, log)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.harvester.Run(gctx) })
		g.Go(func() error { return responder.Run(gctx) })

		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			log.InfoObj("shutdown complete", "shutdown", nil)
			return nil
		}
		return err
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single news cycle and print its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		rep := a.harvester.Cycle(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), rep.String())
		for _, r := range rep.Results {
			line := fmt.Sprintf("  %-9s %s  %s", r.Status, r.ID, r.Title)
			if r.Degraded {
				line += "  (untranslated)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if rep.FetchErr != nil {
			return rep.FetchErr
		}
		return nil
	},
}

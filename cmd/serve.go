package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nnimab/Smart-vocabulary-book/internal/bot"
	"github.com/nnimab/Smart-vocabulary-book/internal/scheduler"
	"github.com/nnimab/Smart-vocabulary-book/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the reminder scheduler and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			tgBot    *bot.Bot
			notifier scheduler.Notifier = scheduler.LogNotifier{Log: a.log}
		)
		if a.cfg.Telegram.Token != "" {
			botCfg := bot.DefaultConfig()
			botCfg.Token = a.cfg.Telegram.Token
			botCfg.Debug = a.cfg.Telegram.Debug

			if tgBot, err = bot.New(botCfg, a.svc.Users, a.svc.Study, a.svc.Stats, a.log); err != nil {
				return err
			}
			notifier = tgBot
		} else {
			a.log.Warn("telegram token not set, reminders will only be logged")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// the first failing component stops the others
		g, gctx := errgroup.WithContext(ctx)

		srv := server.New(a.svc, a.log)
		g.Go(func() error { return srv.Run(gctx, a.cfg.Server.Addr()) })

		if tgBot != nil {
			g.Go(func() error { return tgBot.Run(gctx) })
		}

		if a.cfg.Reminder.Enabled {
			sched := scheduler.New(scheduler.Config{
				StartHour: a.cfg.Reminder.StartHour,
				EndHour:   a.cfg.Reminder.EndHour,
			}, a.svc.Users, a.svc.Study, notifier, a.log)
			g.Go(func() error { return sched.Run(gctx) })
		}

		if err := g.Wait(); err != nil {
			return err
		}
		a.log.Info("shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

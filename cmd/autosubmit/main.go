package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eolymp/autosubmit/cmd/archive"
	"github.com/eolymp/autosubmit/cmd/backoff"
	"github.com/eolymp/autosubmit/cmd/config"
	"github.com/eolymp/autosubmit/cmd/informatics"
	"github.com/eolymp/autosubmit/cmd/notify"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	file := ""

	cmd := &cobra.Command{
		Use:           "autosubmit",
		Short:         "Submit a solution to informatics.msk.ru and wait until the judge registers it",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(v, file)
			if err != nil {
				return err
			}

			return run(cmd.Context(), conf, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&file, "config", "c", "", "config file (default is ~/.autosubmit.yaml)")
	flags.StringP("login", "l", "", "judge username")
	flags.StringP("problem", "p", "", "problem or statement id")
	flags.StringP("file", "f", "", "path to the source file")
	flags.Int("lang", 0, "language id, run \"autosubmit languages\" to list them")
	flags.String("url", "", "judge base URL")
	flags.String("archive", "", "directory to keep submission receipts in")
	flags.String("log-level", "", "log level: debug, info, warn, error")

	bind := map[string]string{
		"informatics.username": "login",
		"problem":              "problem",
		"source":               "file",
		"language":             "lang",
		"informatics.url":      "url",
		"archive.dir":          "archive",
		"log.level":            "log-level",
	}

	for key, flag := range bind {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(newLanguagesCmd())

	return cmd
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Print languages supported by the judge",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printLanguages(cmd.OutOrStdout())
		},
	}
}

func run(ctx context.Context, conf *config.Configuration, in io.Reader, out io.Writer) error {
	log, err := newLogger(conf.Log)
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()

	job := &informatics.Job{
		Username:   conf.Informatics.Username,
		Password:   conf.Informatics.Password,
		Problem:    conf.Problem,
		Source:     conf.Source,
		LanguageID: conf.Language,
	}

	if err := newPrompter(in, out).Complete(job); err != nil {
		return err
	}

	observers := []informatics.Observer{newProgress(out)}

	if conf.Telegram.Token != "" {
		bot, err := notify.Connect(conf.Telegram.Token, conf.Telegram.ChatId, log)
		if err != nil {
			log.Warn("Telegram notifications are disabled", zap.Error(err))
		} else {
			observers = append(observers, bot)
		}
	}

	if conf.Archive.Dir != "" {
		observers = append(observers, archive.New(conf.Archive.Dir, log))
	}

	client := informatics.NewClient(
		conf.Informatics.URL,
		informatics.WithLogger(log),
		informatics.WithPolicy(&backoff.Constant{
			Interval:    conf.Retry.Interval,
			MaxAttempts: conf.Retry.MaxAttempts,
			MaxElapsed:  conf.Retry.MaxElapsed,
		}),
		informatics.WithTimeout(conf.HTTP.Timeout),
		informatics.WithSubmitTimeout(conf.HTTP.SubmitTimeout),
		informatics.WithUserAgent(conf.HTTP.UserAgent),
		informatics.WithHeaders(headers(conf.HTTP.Headers)),
		informatics.WithRejectedLoginRetry(conf.Retry.RejectedLogin),
		informatics.WithObserver(observers...),
	)

	if _, err := client.Run(ctx, job); err != nil {
		return err
	}

	return nil
}

func headers(conf map[string]string) http.Header {
	h := http.Header{}
	for k, v := range conf {
		h.Set(k, v)
	}

	return h
}

func newLogger(conf config.Log) (*zap.Logger, error) {
	lc := zap.NewProductionConfig()
	if conf.Development {
		lc = zap.NewDevelopmentConfig()
	}

	if conf.Level != "" {
		if err := lc.Level.UnmarshalText([]byte(conf.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", conf.Level, err)
		}
	}

	return lc.Build()
}

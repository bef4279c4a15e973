package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmcaldera/quizwire/internal/app"
	"github.com/jmcaldera/quizwire/internal/config"
	"github.com/jmcaldera/quizwire/internal/logger"
)

const releaseVersion = "0.1.0"

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizwire",
		Short:         "A real-time multiplayer trivia quiz server.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaults := config.Default()
	fs.StringVarP(&cfg.Bind, "bind", "b", defaults.Bind, "address to bind to (env: QUIZWIRE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", defaults.Port, "port to listen on (env: QUIZWIRE_PORT)")
	fs.IntVar(&cfg.QuestionTime, "question-time", defaults.QuestionTime, "seconds per question (env: QUIZWIRE_QUESTION_TIME)")
	fs.IntVar(&cfg.TimeBonus, "time-bonus", defaults.TimeBonus, "maximum speed bonus points (env: QUIZWIRE_TIME_BONUS)")
	fs.IntVar(&cfg.MaxPlayers, "max-players", defaults.MaxPlayers, "connected contestant limit (env: QUIZWIRE_MAX_PLAYERS)")
	fs.StringVar(&cfg.Store, "store", defaults.Store, "question store backend, file or sqlite (env: QUIZWIRE_STORE)")
	fs.StringVar(&cfg.QuestionsFile, "questions-file", defaults.QuestionsFile, "question bank file for the file store (env: QUIZWIRE_QUESTIONS_FILE)")
	fs.StringVar(&cfg.DBPath, "db-path", defaults.DBPath, "database file for the sqlite store (env: QUIZWIRE_DB_PATH)")
	fs.StringVar(&cfg.UploadsDir, "uploads-dir", defaults.UploadsDir, "directory for uploaded question images (env: QUIZWIRE_UPLOADS_DIR)")
	fs.StringVar(&cfg.Order, "order", defaults.Order, "question order mode, shuffle or shared (env: QUIZWIRE_ORDER)")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error (env: QUIZWIRE_LOG_LEVEL)")
	fs.BoolVar(&cfg.HTTPLog, "http-log", false, "log every HTTP request (env: QUIZWIRE_HTTP_LOG)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quizwire v{{.Version}}\n")

	return cmd
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.HTTPLog {
		log.EnableHTTPLogging()
	}

	a, err := app.New(log, *cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

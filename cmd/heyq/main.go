package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Ronaldozero7/HeyQ/internal/actions"
	"github.com/Ronaldozero7/HeyQ/internal/config"
	"github.com/Ronaldozero7/HeyQ/internal/intent"
	"github.com/Ronaldozero7/HeyQ/internal/llm"
	"github.com/Ronaldozero7/HeyQ/internal/nlp"
	"github.com/Ronaldozero7/HeyQ/internal/secrets"
	"github.com/Ronaldozero7/HeyQ/internal/session"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "heyq",
		Short:         "Natural-language shopping automation",
		Long:          "heyq turns plain-text shopping commands into browser actions against a small set of known sites.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	root.AddCommand(
		newRunCmd(&cfgPath),
		newPlanCmd(&cfgPath),
		newParseCmd(&cfgPath),
		newVersionCmd(),
	)
	return root
}

func setup(cfgPath string) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	return cfg, nil
}

func loadSecrets(cfg config.Config) *secrets.Store {
	if cfg.SecretsFile == "" {
		return secrets.Empty()
	}
	store, err := secrets.Load(cfg.SecretsFile)
	if err != nil {
		log.Warn().Err(err).Msg("secrets unavailable, login steps will be skipped")
		return secrets.Empty()
	}
	return store
}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run [utterance]",
		Short: "Run one command, or an interactive loop when none given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := session.New(ctx, cfg, loadSecrets(cfg), log.Logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			if len(args) > 0 {
				report(sess.Handle(ctx, strings.Join(args, " ")))
				return nil
			}
			return loop(ctx, sess)
		},
	}
}

func loop(ctx context.Context, sess *session.Session) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("heyq> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "exit" || line == "quit" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		report(sess.Handle(ctx, line))
	}
}

func report(results []actions.ActionResult) {
	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "FAILED: " + r.Error
		}
		fmt.Printf("  %-16s %6dms  %s\n", r.Name, r.ElapsedMS, status)
	}
}

func newPlanCmd(cfgPath *string) *cobra.Command {
	var screenshotDir string
	cmd := &cobra.Command{
		Use:   "plan <file>",
		Short: "Execute a scripted action list (YAML or JSON)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			plan, err := actions.LoadPlan(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := session.New(ctx, cfg, loadSecrets(cfg), log.Logger)
			if err != nil {
				return err
			}
			defer sess.Close()

			results := sess.RunPlan(ctx, plan)
			report(results)
			for _, r := range results {
				if !r.OK {
					if summary, err := sess.Snapshot(ctx, screenshotDir); err == nil {
						log.Info().Fields(summary.ToMap()).Msg("page state at failure")
					}
					return fmt.Errorf("plan %s did not complete", plan.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&screenshotDir, "screenshot-dir", "", "directory for failure screenshots")
	return cmd
}

// newParseCmd parses without a browser: useful for checking what a
// phrase resolves to.
func newParseCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <utterance>",
		Short: "Parse an utterance and print the intent as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			var client llm.Client
			if cfg.LLM.Enabled {
				client, err = llm.NewClient(cfg.LLM.Provider, log.Logger)
				if err != nil {
					log.Warn().Err(err).Msg("provider unavailable, rule engine only")
				}
			}
			parser := llm.NewParser(client, &intent.Context{}, log.Logger,
				nlp.WithDefaultSite(cfg.DefaultSite))
			it := parser.ParseIntent(cmd.Context(), strings.Join(args, " "))
			out, err := json.MarshalIndent(map[string]any{
				"name":     it.Name,
				"entities": it.Entities,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("heyq", version)
		},
	}
}

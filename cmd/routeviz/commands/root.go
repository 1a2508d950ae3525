package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DrSkyle/routeviz/internal/app"
	"github.com/DrSkyle/routeviz/pkg/config"
	"github.com/DrSkyle/routeviz/pkg/session"
	"github.com/DrSkyle/routeviz/pkg/version"
)

var (
	cfgFile string
	v       = viper.New()

	// Graph selection shared by the editor and the headless commands.
	scenarioName string
	scenarioFile string
)

var rootCmd = &cobra.Command{
	Use:   "routeviz",
	Short: "Weighted graph editor with shortest-path playback",
	Long: `routeviz - draw a network, run Dijkstra or Bellman-Ford on it and
watch the algorithm step through its edges.

Edit. Route. Replay.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// The editor owns the terminal, so logs go to a file.
		logFile, err := app.OpenLogFile(cfg.LogFile)
		if err != nil {
			return err
		}
		defer logFile.Close()

		ctx := cmd.Context()
		a, err := app.New(ctx, cfg, app.WithLogger(app.NewLogger(logFile, cfg.Verbose)))
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		sc, err := a.Resolve(ctx, scenarioName, scenarioFile)
		if err != nil {
			return err
		}
		return a.RunTUI(ctx, sc)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "[ERROR] %s\n", session.Describe(err))
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.routeviz.yaml)")
	pf.String("backend", config.DefaultBackendURL, "Algorithm service base URL")
	pf.Duration("timeout", config.Default().Backend.Timeout, "Algorithm request timeout")
	pf.String("scenarios", config.DefaultScenariosURL, "Scenario storage (path, file://, s3://bucket/prefix, badger:///dir)")
	pf.String("rules", "", "YAML file replacing the built-in run rules")
	pf.String("lock-policy", "reject", "Undo during playback: reject or ignore")
	pf.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces")
	pf.String("log-file", config.DefaultLogFile, "Editor log file")
	pf.BoolP("verbose", "v", false, "Debug logging")

	for key, flag := range map[string]string{
		"backend.url":          "backend",
		"backend.timeout":      "timeout",
		"scenarios.url":        "scenarios",
		"rules_file":           "rules",
		"playback.lock_policy": "lock-policy",
		"otel_endpoint":        "otel-endpoint",
		"log_file":             "log-file",
		"verbose":              "verbose",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.Flags().StringVarP(&scenarioName, "scenario", "s", "", "Open a saved scenario")
	rootCmd.Flags().StringVarP(&scenarioFile, "file", "f", "", "Open a scenario file (.yaml or .hcl)")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderFutureGlassHelp(cmd)
	})

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	config.SetDefaults(v)
	v.SetEnvPrefix("ROUTEVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".routeviz.yaml"))
		v.SetConfigType("yaml")
	}
}

// loadConfig reads the config file, if any, and validates the result. Only
// an explicitly named file must exist.
func loadConfig() (config.Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		missing := errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
		if cfgFile != "" || !missing {
			return config.Config{}, fmt.Errorf("config: %w", err)
		}
	}
	return config.Load(v)
}

// headlessApp builds an App that logs to stderr.
func headlessApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, app.WithLogger(app.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)))
}

func renderFutureGlassHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("ROUTEVIZ %s", version.Current)))
	fmt.Fprintln(out, cmd.Short)

	fmt.Fprintln(out, titleStyle.Render("USAGE"))
	fmt.Fprintf(out, "  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintln(out, titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(out, "  %-12s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		line := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "[]" {
			line += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Fprintln(out, flagStyle.Render(line))
	})
	fmt.Fprintln(out)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Agions/gantt-chart-component/internal/config"
	"github.com/Agions/gantt-chart-component/internal/cpm"
	"github.com/Agions/gantt-chart-component/internal/export"
	"github.com/Agions/gantt-chart-component/internal/logging"
	"github.com/Agions/gantt-chart-component/internal/model"
	"github.com/Agions/gantt-chart-component/internal/project"
	"github.com/Agions/gantt-chart-component/internal/reporter"
	"github.com/Agions/gantt-chart-component/internal/schedule"
	"github.com/Agions/gantt-chart-component/internal/state"
	"github.com/Agions/gantt-chart-component/internal/tui"
	"github.com/Agions/gantt-chart-component/internal/ui"
	"github.com/Agions/gantt-chart-component/internal/viewer"
)

var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool
	flagJSON     bool

	cfg    *config.Config
	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gantt",
		Short: "Critical path analysis and scheduling for Gantt charts",
		Long: `Gantt loads a project file (JSON, YAML or TOML) of tasks and dependencies,
computes the critical path, reflows dates along finish-to-start links and
serves the result to a terminal chart or a browser renderer.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: gantt.{yaml,toml,json} in the config dir or .)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Log as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(windowCmd())
	rootCmd.AddCommand(graphCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(viewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared logger. Flags override
// the file and GANTT_* environment values.
func setup(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(flagConfig)
	if err != nil {
		return err
	}
	if err := v.BindPFlag("logging.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}
	if flagLogJSON {
		v.Set("logging.format", "json")
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = c
	logger = logging.New(os.Stderr, cfg.LoggingOptions())
	logger.Debug("config loaded", "file", v.ConfigFileUsed())
	return nil
}

func analyzeCmd() *cobra.Command {
	var (
		flagAnchor string
		flagPaths  int
	)

	cmd := &cobra.Command{
		Use:   "analyze <project>",
		Short: "Compute the critical path and per-task float",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}

			opts := cpm.Options{
				Anchor:   p.Anchor,
				MaxPaths: cfg.Analysis.MaxCriticalPaths,
				Logger:   logger,
			}
			if flagAnchor != "" {
				if opts.Anchor, err = model.ParseDate(flagAnchor); err != nil {
					return fmt.Errorf("--anchor: %w", err)
				}
			}
			if cmd.Flags().Changed("paths") {
				opts.MaxPaths = flagPaths
			}

			r := reporter.New(p.Name, cpm.Analyze(p.Tasks, p.Dependencies, opts))
			if flagJSON {
				data, err := r.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			r.PrintSchedule(os.Stdout)
			r.PrintCriticalPaths(os.Stdout)
			fmt.Println(r.Summary())
			return nil
		},
	}

	cmd.Flags().StringVar(&flagAnchor, "anchor", "", "Day 0 of the schedule (YYYY-MM-DD); defaults to the project anchor or earliest start")
	cmd.Flags().IntVar(&flagPaths, "paths", 0, "Max critical paths to enumerate (0 = all)")

	return cmd
}

func scheduleCmd() *cobra.Command {
	var flagOutput string

	cmd := &cobra.Command{
		Use:   "schedule <project>",
		Short: "Reflow task dates along finish-to-start dependencies",
		Long: `Moves every task so it starts the day after its latest finish-to-start
predecessor ends (plus lag), keeping durations. Readonly tasks stay put.
Without --output the changes are only reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}

			tasks, changes := schedule.Plan(p.Tasks, p.Dependencies, logger)
			if flagJSON {
				if err := outputJSON(nonNil(changes)); err != nil {
					return err
				}
			} else {
				printChanges(changes)
			}

			if flagOutput == "" {
				return nil
			}
			p.Tasks = tasks
			if err := project.Save(flagOutput, p); err != nil {
				return err
			}
			logger.Info("wrote schedule", "path", flagOutput, "moved", len(changes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the rescheduled project to this file (format from extension)")

	return cmd
}

func windowCmd() *cobra.Command {
	var flagScroll float64

	cmd := &cobra.Command{
		Use:   "window <project>",
		Short: "Show which rows a renderer would draw at a scroll offset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadManager(args[0])
			if err != nil {
				return err
			}
			defer m.Destroy()
			if !m.UpdateScrollPosition(flagScroll) {
				return fmt.Errorf("invalid scroll offset %v", flagScroll)
			}

			st := m.State()
			visible := m.VisibleTasks()
			if flagJSON {
				return outputJSON(map[string]any{
					"window":  st.Window,
					"visible": visible,
				})
			}

			fmt.Printf("%s rows [%d, %d) of %d, total height %.0f\n",
				ui.BoldCyan("🪟"), st.Window.StartIndex, st.Window.EndIndex, len(st.Tasks), st.Window.TotalHeight)
			for _, ct := range visible {
				fmt.Printf("  %4d  %s  %s\n", ct.Index, ui.TaskID(ct.Task.ID), ct.Task.Name)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&flagScroll, "scroll", 0, "Scroll offset in pixels")

	return cmd
}

func graphCmd() *cobra.Command {
	var flagFormat string

	cmd := &cobra.Command{
		Use:   "graph <project>",
		Short: "Export the analysed dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			res := cpm.Analyze(p.Tasks, p.Dependencies, cpm.Options{
				Anchor:   p.Anchor,
				MaxPaths: cfg.Analysis.MaxCriticalPaths,
				Logger:   logger,
			})

			switch flagFormat {
			case "dot":
				return export.WriteDOT(os.Stdout, p.Name, res)
			case "json":
				return outputJSON(export.ToGraph(p.Name, res))
			default:
				return fmt.Errorf("unknown format %q (want dot or json)", flagFormat)
			}
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "dot", "Output format (dot, json)")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project>",
		Short: "Check a project file against the schema and for graph problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				var schemaErr *project.SchemaError
				if errors.As(err, &schemaErr) {
					printIssues(schemaErr.Issues)
				}
				return err
			}

			issues := project.Check(p)
			if flagJSON {
				if err := outputJSON(nonNil(issues)); err != nil {
					return err
				}
			} else {
				printIssues(issues)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) found", len(issues))
			}
			if !flagJSON {
				fmt.Printf("%s %s: %d tasks, %d dependencies\n", ui.BoldGreen("✓"), p.Name, len(p.Tasks), len(p.Dependencies))
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var (
		flagAddr string
		flagOpen bool
	)

	cmd := &cobra.Command{
		Use:   "serve <project>",
		Short: "Serve the chart state over HTTP for browser renderers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := cfg.Server.Addr
			if cmd.Flags().Changed("addr") {
				addr = flagAddr
			}
			if viewer.IsPortOpen(addr) {
				return fmt.Errorf("%s is already in use", addr)
			}

			m, p, err := loadManager(args[0])
			if err != nil {
				return err
			}
			defer m.Destroy()

			url, srv, err := viewer.Start(addr, viewer.New(p.Name, m).Handler())
			if err != nil {
				return err
			}
			ui.PrintLogo(os.Stdout)
			fmt.Printf("🌐 Serving %s at %s\n", ui.Bold(p.Name), ui.BoldCyan(url))
			fmt.Println(ui.Dim("   Press Ctrl+C to stop"))
			if flagOpen {
				openBrowser(url + "/state")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config server.addr)")
	cmd.Flags().BoolVar(&flagOpen, "open", false, "Open the state endpoint in the browser")

	return cmd
}

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <project>",
		Short: "Open the interactive terminal chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, p, err := loadManager(args[0])
			if err != nil {
				return err
			}
			defer m.Destroy()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tui.Run(ctx, p.Name, m)
		},
	}
}

// loadManager reads a project and wraps it in a state manager configured
// from the loaded config.
func loadManager(path string) (*state.Manager, *project.Project, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, nil, err
	}
	sc := cfg.StateConfig(logger)
	sc.OnAutoSchedule = func(changes []schedule.Change) {
		logger.Info("auto-scheduled", "moved", len(changes))
	}
	sc.OnViewChange = func(mode state.ViewMode) {
		logger.Debug("view mode changed", "mode", mode)
	}
	m := state.New(state.GanttState{
		Tasks:        p.Tasks,
		Dependencies: p.Dependencies,
		View:         state.ViewSettings{Mode: state.ViewMode(p.ViewMode)},
	}, sc)
	return m, p, nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("could not open browser", "url", url, "err", err)
	}
}

// --- Output helpers ---

func outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printChanges(changes []schedule.Change) {
	if len(changes) == 0 {
		fmt.Println(ui.BoldGreen("✓ Schedule already consistent"))
		return
	}
	fmt.Printf("%s %d task(s) moved\n", ui.BoldYellow("↻"), len(changes))
	for _, c := range changes {
		fmt.Printf("  %s  %s → %s\n", ui.TaskID(c.ID), ui.Dim(c.OldStart), ui.Bold(c.NewStart))
	}
}

func printIssues(issues []project.Issue) {
	for _, i := range issues {
		fmt.Printf("  %s %s\n", ui.Red("✗"), i.String())
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mrsinham/echoreport/cmd/echoreport/wizard"
	"github.com/mrsinham/echoreport/internal/app"
	"github.com/mrsinham/echoreport/internal/config"
	"github.com/mrsinham/echoreport/internal/export"
	"github.com/mrsinham/echoreport/internal/fields"
	"github.com/mrsinham/echoreport/internal/logging"
	"github.com/mrsinham/echoreport/internal/render"
	"github.com/mrsinham/echoreport/internal/report"
	"github.com/mrsinham/echoreport/internal/session"
	"github.com/mrsinham/echoreport/internal/util"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "echoreport",
		Short:         "Intraoperative transesophageal echocardiography reports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (.env, YAML, JSON or TOML)")

	rootCmd.AddCommand(wizardCmd(&configPath))
	rootCmd.AddCommand(renderCmd(&configPath))
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(fieldsCmd())

	return rootCmd
}

// setup loads the configuration and builds the logger. The wizard owns the
// terminal, so its logs always go to a file.
func setup(configPath string, interactive bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	output := cfg.LogFile
	if interactive && output == "" {
		output = filepath.Join(os.TempDir(), "echoreport.log")
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, log, nil
}

// newController wires a fresh session to the configured sink.
func newController(sink export.Sink, log *zap.Logger, policy report.Policy) *app.Controller {
	exp := export.New(sink, log)
	return app.NewController(session.New(fields.Echo()), exp,
		app.WithPolicy(policy),
		app.WithLogger(log),
	)
}

func wizardCmd(configPath *string) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Fill in and export a report interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			sink, err := cfg.NewSink()
			if err != nil {
				return err
			}
			ctrl := newController(sink, log, cfg.GenerationPolicy())
			if cfg.Institution != "" && from == "" {
				if _, err := ctrl.Dispatch(cmd.Context(), app.SubmitSection{
					Section: fields.SectionStudy,
					Values:  map[string]any{"institution": cfg.Institution},
				}); err != nil {
					return err
				}
			}
			return wizard.Run(ctrl, from, log)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "prefill from a session YAML file")

	return cmd
}

func renderCmd(configPath *string) *cobra.Command {
	var (
		sessionPath string
		formats     []string
		at          string
		outputDir   string
		policyName  string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Generate and export a report from a session file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(*configPath, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			generatedAt := time.Now()
			if at != "" {
				generatedAt, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			parsed := make([]render.Format, 0, len(formats))
			for _, name := range formats {
				f, err := render.ParseFormat(name)
				if err != nil {
					return err
				}
				parsed = append(parsed, f)
			}

			policy := cfg.GenerationPolicy()
			if policyName != "" {
				if policy, err = report.ParsePolicy(policyName); err != nil {
					return err
				}
			}

			var sink export.Sink
			if outputDir != "" {
				sink = export.NewDirSink(outputDir)
			} else if sink, err = cfg.NewSink(); err != nil {
				return err
			}

			f, err := wizard.LoadFromYAML(sessionPath)
			if err != nil {
				return err
			}

			ctrl := newController(sink, log, policy)
			return runRender(cmd.Context(), cmd.OutOrStdout(), ctrl, f, generatedAt, parsed)
		},
	}
	cmd.Flags().StringVar(&sessionPath, "session", "", "session YAML file (required)")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"pdf"}, "output formats: text, markdown, pdf, json, png, dicom")
	cmd.Flags().StringVar(&at, "at", "", "generation time, RFC3339 (default: now)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (overrides ECHOREPORT_OUTPUT_DIR and the sink)")
	cmd.Flags().StringVar(&policyName, "policy", "", "generation policy: lenient or strict")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

// runRender submits a session file, generates once and exports every format.
func runRender(ctx context.Context, out io.Writer, ctrl *app.Controller, f *wizard.SessionFile, at time.Time, formats []render.Format) error {
	if err := wizard.Apply(ctx, ctrl, f); err != nil {
		return err
	}
	if _, err := ctrl.Dispatch(ctx, app.GenerateReport{At: at}); err != nil {
		return err
	}

	var errs []error
	for _, format := range formats {
		res, err := ctrl.Dispatch(ctx, app.Export{Format: format})
		var perr *export.PersistenceError
		switch {
		case errors.As(err, &perr):
			errs = append(errs, fmt.Errorf("%s: %w", res.Artifact.Name, err))
		case err != nil:
			errs = append(errs, err)
		default:
			fmt.Fprintf(out, "%s\t%s\n", format, res.Artifact.Location)
		}
	}
	return errors.Join(errs...)
}

func sampleCmd() *cobra.Command {
	var (
		seed   uint64
		output string
		at     string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample session file",
		RunE: func(cmd *cobra.Command, args []string) error {
			studyAt := time.Now()
			if at != "" {
				var err error
				if studyAt, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}

			f := wizard.FromSample(util.GenerateSample(fields.Echo(), seed, studyAt))
			if output == "" {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(f); err != nil {
					return err
				}
				return enc.Close()
			}
			if err := wizard.SaveToYAML(f, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample session (seed %d) written to %s\n", seed, output)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducibility (default: random)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&at, "at", "", "study date and time, RFC3339 (default: now)")

	return cmd
}

func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the report fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := fields.Echo()

			var rows [][]string
			for _, sec := range fields.Sections() {
				for _, spec := range reg.Fields(sec) {
					allowed := spec.Allowed()
					if spec.Kind == fields.KindText {
						allowed = ""
					}
					rows = append(rows, []string{spec.ID(), spec.Kind.String(), spec.Label, strings.ReplaceAll(allowed, " | ", ", ")})
				}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("CAMPO", "TIPO", "ETIQUETA", "VALORES").
				Rows(rows...)

			fmt.Fprintln(cmd.OutOrStdout(), reg.Title())
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

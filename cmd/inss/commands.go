package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/inss-calc/internal/calculation"
	"github.com/rgehrsitz/inss-calc/internal/config"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [config-file]",
		Short: "Run the salary pipeline and compute the benefit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("correction") {
				cfg.Pipeline.ApplyCorrection, _ = cmd.Flags().GetBool("correction")
			}
			if ceiling, _ := cmd.Flags().GetString("ceiling"); ceiling != "" {
				value, err := decimal.NewFromString(ceiling)
				if err != nil {
					return fmt.Errorf("invalid --ceiling %q: %w", ceiling, err)
				}
				cfg.Pipeline.Ceiling = value
			}
			if err := cfg.Pipeline.Validate(); err != nil {
				return fmt.Errorf("pipeline.%w", err)
			}

			format, _ := cmd.Flags().GetString("format")
			formatter := output.GetFormatterByName(format)
			if formatter == nil {
				return fmt.Errorf("unsupported format %q (available: %s; aliases: %s)",
					format, strings.Join(output.AvailableFormatterNames(), ", "),
					strings.Join(output.AvailableFormatAliases(), ", "))
			}

			p, err := a.newPipeline(cfg)
			if err != nil {
				return err
			}
			defer p.close()

			report, err := p.run(cmd.Context())
			if err != nil {
				return err
			}

			if save, _ := cmd.Flags().GetBool("save"); save {
				filename, err := output.WriteFormatted(formatter, report, fileExtensions[formatter.Name()])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", filename)
				return nil
			}

			data, err := formatter.Format(report)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			if render, _ := cmd.Flags().GetBool("render"); render && formatter.Name() == "markdown" {
				rendered, err := output.RenderMarkdown(data, 100)
				if err != nil {
					return err
				}
				data = []byte(rendered)
			}
			return writeOutput(cmd, data)
		},
	}
	cmd.Flags().StringP("format", "f", "console", "Output format (console, csv, json, yaml, markdown)")
	cmd.Flags().Bool("correction", false, "Apply monetary correction (overrides the configuration)")
	cmd.Flags().String("ceiling", "", "Outlier ceiling (overrides the configuration)")
	cmd.Flags().Bool("render", false, "Render markdown output for the terminal")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().Bool("save", false, "Write to a timestamped inss_report file in the working directory")
	return cmd
}

var fileExtensions = map[string]string{
	"console":  "txt",
	"csv":      "csv",
	"json":     "json",
	"yaml":     "yaml",
	"markdown": "md",
}

func (a *app) extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Parse a single document and export its records as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			format, _ := flags.GetString("format")
			layout, _ := flags.GetString("layout")
			originName, _ := flags.GetString("origin")
			header, _ := flags.GetBool("header")
			name, _ := flags.GetString("name")
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			origin, err := domain.ParseOrigin(originName)
			if err != nil {
				return err
			}

			cfg := config.DefaultConfiguration()
			cfg.Sources = []domain.SourceConfig{{
				Name:   name,
				Path:   args[0],
				Format: domain.SourceFormat(format),
				Layout: domain.DelimitedLayout(layout),
				Origin: origin,
				Header: &header,
			}}
			if err := config.NewInputParser().ValidateConfiguration(&cfg); err != nil {
				return err
			}

			p, err := a.newPipeline(&cfg)
			if err != nil {
				return err
			}
			defer p.close()

			report, err := p.run(cmd.Context())
			if err != nil {
				return err
			}
			for _, src := range report.Sources {
				r := src.Report
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d lines, %d parsed, %d skipped, %d dropped, %d unparseable\n",
					src.Name, r.Lines, r.Parsed, r.Skipped, r.Dropped, r.Unparseable)
			}

			data, err := output.WriteRecordsCSV(report.Rows)
			if err != nil {
				return err
			}
			return writeOutput(cmd, data)
		},
	}
	cmd.Flags().String("format", string(domain.FormatText), "Document format (text, delimited)")
	cmd.Flags().String("layout", "", "Column layout for delimited documents (history, letter)")
	cmd.Flags().String("origin", domain.PrimaryHistory.String(), "Document origin (cnis, carta, manual)")
	cmd.Flags().Bool("header", true, "Delimited document starts with a header row")
	cmd.Flags().String("name", "", "Source name (default: file name)")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func (a *app) factorCmd() *cobra.Command {
	defaults := domain.DefaultPensionParameters()
	cmd := &cobra.Command{
		Use:   "factor",
		Short: "Compute the pension factor for a set of parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parametersFromFlags(cmd)
			if err != nil {
				return err
			}
			factor, err := calculation.PensionFactor(params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pension factor: %s\n", factor.StringFixed(4))
			fmt.Fprintf(cmd.OutOrStdout(), "  Tc=%s Es=%s Id=%s a=%s\n",
				params.ContributionYears, params.SurvivalExpectancy, params.Age, params.Aliquot)
			return nil
		},
	}
	cmd.Flags().String("tc", defaults.ContributionYears.String(), "Contribution time in years")
	cmd.Flags().String("es", defaults.SurvivalExpectancy.String(), "Survival expectancy in years")
	cmd.Flags().String("id", defaults.Age.String(), "Age at retirement")
	cmd.Flags().String("a", defaults.Aliquot.String(), "Contribution aliquot")
	return cmd
}

func parametersFromFlags(cmd *cobra.Command) (domain.PensionParameters, error) {
	var params domain.PensionParameters
	fields := []struct {
		flag   string
		target *decimal.Decimal
	}{
		{"tc", &params.ContributionYears},
		{"es", &params.SurvivalExpectancy},
		{"id", &params.Age},
		{"a", &params.Aliquot},
	}
	for _, f := range fields {
		raw, _ := cmd.Flags().GetString(f.flag)
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return params, fmt.Errorf("invalid --%s %q: %w", f.flag, raw, err)
		}
		*f.target = value
	}
	return params, nil
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			for _, src := range cfg.Sources {
				if src.Path == "" {
					continue
				}
				if _, err := os.Stat(src.Path); err != nil {
					return fmt.Errorf("source %s: %w", src.Name, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %d source(s)\n", len(cfg.Sources))
			return nil
		},
	}
}

// writeOutput writes data to --output when set, stdout otherwise
func writeOutput(cmd *cobra.Command, data []byte) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

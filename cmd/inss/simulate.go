package main

import (
	"fmt"
	"io"

	"github.com/rgehrsitz/inss-calc/internal/compare"
	"github.com/rgehrsitz/inss-calc/internal/domain"
	"github.com/rgehrsitz/inss-calc/internal/output"
	"github.com/rgehrsitz/inss-calc/internal/transform"
	"github.com/rgehrsitz/inss-calc/internal/tui"
	"github.com/spf13/cobra"
)

func (a *app) simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [config-file]",
		Short: "Re-evaluate the benefit with other parameters",
		Long: "Runs the pipeline once, then re-evaluates the result with the parameters\n" +
			"changed by --set transforms, or interactively with --interactive.\n\n" +
			"Transforms: set_contribution_years:years=N, set_survival_expectancy:years=N,\n" +
			"set_age:age=N, set_aliquot:value=N, postpone_retirement:years=N[,contributing=false]",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, _ := cmd.Flags().GetStringArray("set")
			interactive, _ := cmd.Flags().GetBool("interactive")
			transforms, err := transform.NewTransformRegistry().ParseTransformSpecs(specs)
			if err != nil {
				return err
			}

			p, err := a.loadPipeline(args[0])
			if err != nil {
				return err
			}
			defer p.close()

			report, err := p.run(cmd.Context())
			if err != nil {
				return err
			}

			if interactive {
				return tui.Run(p.engine, report)
			}

			params, err := transform.ApplyTransforms(report.Context.Parameters, transforms)
			if err != nil {
				return err
			}
			result, err := p.engine.Simulate(report, params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printResult(out, "Configured", report.Result)
			for _, t := range transforms {
				fmt.Fprintf(out, "  applied: %s\n", t.Description())
			}
			printResult(out, "Simulated", result)
			if result.Status == domain.StatusOK && report.Result.Status == domain.StatusOK {
				fmt.Fprintf(out, "Difference: %s\n", output.FormatCurrency(result.FinalBenefit.Sub(report.Result.FinalBenefit)))
			}
			return nil
		},
	}
	cmd.Flags().StringArray("set", nil, "Parameter transform name:key=value (repeatable)")
	cmd.Flags().BoolP("interactive", "i", false, "Open the interactive simulator")
	return cmd
}

func printResult(w io.Writer, title string, r domain.BenefitResult) {
	p := r.Parameters
	fmt.Fprintf(w, "%s (Tc=%s Es=%s Id=%s a=%s)\n", title,
		p.ContributionYears, p.SurvivalExpectancy, p.Age, p.Aliquot)
	if r.Status != domain.StatusOK {
		fmt.Fprintf(w, "  status: %s\n", r.Status)
		return
	}
	fmt.Fprintf(w, "  factor:  %s\n", r.Factor.StringFixed(4))
	fmt.Fprintf(w, "  benefit: %s\n", output.FormatCurrency(r.FinalBenefit))
}

func (a *app) compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [config-file]",
		Short: "Compare the configured parameters against simulation templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := transform.CreateBuiltInTemplates()
			if list, _ := cmd.Flags().GetBool("list-templates"); list {
				fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(templates))
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("a configuration file is required")
			}

			with, _ := cmd.Flags().GetString("with")
			specs, _ := cmd.Flags().GetStringArray("transform")
			options := compare.CompareOptions{
				Templates:  transform.ParseTemplateList(with),
				Transforms: specs,
			}
			if len(options.Templates) == 0 && len(options.Transforms) == 0 {
				return fmt.Errorf("--with or --transform is required (see --list-templates)")
			}

			p, err := a.loadPipeline(args[0])
			if err != nil {
				return err
			}
			defer p.close()

			report, err := p.run(cmd.Context())
			if err != nil {
				return err
			}

			engine := compare.NewCompareEngine(p.engine)
			engine.TemplateRegistry = templates
			compSet, err := engine.Compare(cmd.Context(), report, options)
			if err != nil {
				return err
			}
			compSet.ConfigPath = args[0]

			var text string
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "table":
				text = (&compare.TableFormatter{}).Format(compSet)
			case "compact":
				text = (&compare.TableFormatter{}).FormatCompact(compSet) + "\n"
			case "csv":
				text, err = (&compare.CSVFormatter{}).Format(compSet)
			case "json":
				text, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			default:
				return fmt.Errorf("unsupported format %q (table, compact, csv, json)", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().String("with", "", "Comma-separated templates to compare")
	cmd.Flags().StringArray("transform", nil, "Transform spec evaluated as its own alternative (repeatable)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.Flags().Bool("list-templates", false, "List the available templates")
	return cmd
}

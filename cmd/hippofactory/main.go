package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/hippofactory-go/internal/app"
	"github.com/quantmind-br/hippofactory-go/internal/config"
	"github.com/quantmind-br/hippofactory-go/internal/output"
	"github.com/quantmind-br/hippofactory-go/pkg/version"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version.Full()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// cli holds state shared by the commands of one invocation
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "hippofactory [path]",
		Short: "Expand a HIPPOFACTS manifest into a Bindle invoice",
		Long: `hippofactory reads a HIPPOFACTS manifest describing WAGI handlers and
expands it into a Bindle invoice: one parcel per handler module and static
asset, with groups tying each handler to its files.

The path is a HIPPOFACTS file or a directory containing one.`,
		Version:       version.Short(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runExpand,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.hippofactory/config.yaml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	pf.StringP("server", "s", "", "Bindle registry URL (env BINDLE_URL)")
	pf.StringP("versioning", "V", "", "Version mangling: dev or production (default dev)")
	_ = c.v.BindPFlag("registry.url", pf.Lookup("server"))
	_ = c.v.BindPFlag("expansion.versioning", pf.Lookup("versioning"))

	addExpandFlags(rootCmd, c.v)

	expandCmd := &cobra.Command{
		Use:   "expand [path]",
		Short: "Expand a manifest and print the invoice",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runExpand,
	}
	addExpandFlags(expandCmd, c.v)

	prepareCmd := &cobra.Command{
		Use:   "prepare [path]",
		Short: "Expand a manifest and write a standalone bindle",
		Long: `Writes the expanded invoice and the bytes of every local parcel as a
standalone bindle: invoice.toml plus parcels/<sha256>.dat, either to a
directory or to an S3-compatible bucket under <name>/<version>/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runPrepare,
	}
	prepareCmd.Flags().String("dir", "", "Output directory (default ./bindle)")
	prepareCmd.Flags().String("s3-bucket", "", "Write to this bucket instead of a directory")
	prepareCmd.Flags().Bool("force", false, "Overwrite an existing invoice and parcels")
	prepareCmd.Flags().Bool("dry-run", false, "Simulate without writing")
	prepareCmd.Flags().Bool("report", false, "Print a JSON report of parcel outcomes")

	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, registry and cache",
		Args:  cobra.NoArgs,
		RunE:  c.runDoctor,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}

	rootCmd.AddCommand(expandCmd, prepareCmd, doctorCmd, versionCmd)
	return rootCmd
}

func addExpandFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().String("format", "", "Invoice format: toml or json (default toml)")
	cmd.Flags().StringP("out", "o", "", "Write the invoice to a file instead of stdout")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return v.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	}
}

func pathArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

func (c *cli) orchestrator(cmd *cobra.Command) (*app.Orchestrator, error) {
	cfg, err := config.LoadWithViper(c.v, config.LoadOptions{ConfigFile: c.cfgFile})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	o, err := app.NewOrchestrator(app.OrchestratorOptions{
		Config:    cfg,
		Verbose:   c.verbose,
		LogOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return o, nil
}

func (c *cli) runExpand(cmd *cobra.Command, args []string) error {
	o, err := c.orchestrator(cmd)
	if err != nil {
		return err
	}
	defer o.Close()

	inv, err := o.Expand(cmd.Context(), pathArg(args))
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		return o.RenderToFile(out, inv, "")
	}
	return o.Render(cmd.OutOrStdout(), inv, "")
}

func (c *cli) runPrepare(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	o, err := c.orchestrator(cmd)
	if err != nil {
		return err
	}
	defer o.Close()

	dir, _ := flags.GetString("dir")
	bucket, _ := flags.GetString("s3-bucket")
	force, _ := flags.GetBool("force")
	dryRun, _ := flags.GetBool("dry-run")
	asJSON, _ := flags.GetBool("report")

	var progress io.Writer
	if !asJSON {
		progress = cmd.ErrOrStderr()
	}

	report, err := o.Prepare(cmd.Context(), pathArg(args), app.PrepareOptions{
		Directory: dir,
		S3Bucket:  bucket,
		Force:     force,
		DryRun:    dryRun,
		Progress:  progress,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return report.WriteJSON(cmd.OutOrStdout())
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, report *output.Report) {
	prefix := ""
	if report.DryRun() {
		prefix = "[dry run] "
	}
	fmt.Fprintf(w, "%sPrepared %s at %s\n", prefix, report.Invoice(), report.Location())
	fmt.Fprintf(w, "  written:  %d parcels (%d bytes)\n", report.Count(output.StatusWritten), report.BytesWritten())
	fmt.Fprintf(w, "  existing: %d parcels\n", report.Count(output.StatusExisting))
	fmt.Fprintf(w, "  skipped:  %d parcels without a local file\n", report.Count(output.StatusSkipped))
}

func (c *cli) runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Checking hippofactory setup...")

	o, err := c.orchestrator(cmd)
	if err != nil {
		fmt.Fprintf(w, "  config: FAILED (%v)\n", err)
		return err
	}
	defer o.Close()

	allPassed := true
	for _, r := range o.Doctor(cmd.Context()) {
		status := "OK"
		if !r.OK {
			status = "FAILED"
			allPassed = false
		}
		fmt.Fprintf(w, "  %s: %s (%s)\n", r.Name, status, r.Detail)
	}

	fmt.Fprintln(w)
	if allPassed {
		fmt.Fprintln(w, "All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "Some checks failed. Please resolve the issues above.")
	return fmt.Errorf("doctor found problems")
}

package cli

import (
	"fmt"

	"github.com/nao1215/pgimport"
	"github.com/nao1215/pgimport/internal/logging"
	"github.com/nao1215/pgimport/loader"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [path...]",
	Short: "Print the tables an import would create",
	Long: `Plan reads the given files and directories (default: the current directory),
infers every table and prints its CREATE TABLE statement. Nothing is moved
and no database is contacted.`,
	RunE: runPlan,
}

var planFlags struct {
	target string
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planFlags.target, "target", "postgres", "SQL dialect: postgres|sqlite")
}

func runPlan(cmd *cobra.Command, args []string) error {
	dialect, err := loader.ParseDialect(planFlags.target)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	logger, cleanup, err := logging.Setup(logging.Options{
		Verbose: getVerboseFlag(cmd),
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := commandContext(cmd)
	importer, err := pgimport.NewBuilder().AddPaths(paths...).SetLogger(logger).Build(ctx)
	if err != nil {
		return err
	}
	report, err := importer.Plan(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, t := range report.Tables {
		fmt.Fprintf(w, "-- %s (%d rows)\n%s;\n\n", t.Source, t.Rows, loader.CreateTableSQL(dialect, t.Spec))
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "-- FAILED %s: %v\n", f.Source, f.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d datasets failed: %w", len(report.Failures), report.Err())
	}
	return nil
}

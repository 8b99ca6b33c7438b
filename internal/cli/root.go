// Package cli implements the pgimport command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgimport",
	Short: "Load CSV, TSV, JSON, Parquet and Excel files into PostgreSQL",
	Long: `pgimport discovers the data files of a directory, infers a typed schema
for every file (one table per Excel sheet) and bulk-loads the rows.

Without a subcommand pgimport runs "import".

Workflow:
  1. Data files in --dir are moved into unprocessed_data/
  2. Each file becomes one table per dataset, names normalized to
     lower-case identifiers ("Ürün Adı" becomes "urun_adi")
  3. The normalized data is written to processed_data/

Exit Codes:
  0 - Success
  1 - Any file failed, or the run could not start`,
	Args:         cobra.NoArgs,
	RunE:         runImport,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	registerImportFlags(rootCmd)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

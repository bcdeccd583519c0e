// bigtext - string operations over text files too large to hold in memory
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	Version = "dev"

	// Global flags
	configPath string
	encodingFl string
	chunkSize  int
	outDir     string
	dataDir    string
	noJournal  bool
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bigtext",
	Short: "String operations over large text files",
	Long: `bigtext runs familiar string operations (length, index, replace, split,
join, insert, case mapping, trim, substring) over text files of any size.

Files are read in bounded chunks, so memory use stays flat no matter how
large the input is. Transformations write their results to new files and
print the paths.

Examples:
  # Count characters
  bigtext length huge.log

  # Find the first occurrence after character 1000
  bigtext index huge.log "ERROR" --from 1000

  # Replace every occurrence
  bigtext replace huge.log "foo" "bar"

  # Split on blank lines into at most 10 parts
  bigtext split huge.log $'\n\n' --limit 10

  # Start the HTTP API
  bigtext serve`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.toml or .yaml)")
	rootCmd.PersistentFlags().StringVarP(&encodingFl, "encoding", "e", "", "Source encoding (default: utf-8)")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "Characters per chunk")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out-dir", "o", "", "Output directory (default: next to the source)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.bigtext)")
	rootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "Do not record runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(lengthCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(containsCmd)
	rootCmd.AddCommand(replaceCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(upperCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(trimCmd)
	rootCmd.AddCommand(substrCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

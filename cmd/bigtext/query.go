package main

import (
	"context"
	"fmt"

	"github.com/shivavenkatesh/bigtext/pkg/types"
	"github.com/spf13/cobra"
)

var lengthNoCRLF bool

var lengthCmd = &cobra.Command{
	Use:   "length <file>",
	Short: "Count the characters of a file",
	Long: `Count the characters of a file in its encoding.

Examples:
  bigtext length huge.log
  bigtext length huge.log --no-crlf
  bigtext length legacy.txt -e iso-8859-1`,
	Args: cobra.ExactArgs(1),
	RunE: runLength,
}

func init() {
	lengthCmd.Flags().BoolVar(&lengthNoCRLF, "no-crlf", false, "Do not count CR and LF")
}

func runLength(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	n, err := svc.Length(ctx, types.LengthRequest{Source: source(args[0]), NoCRLF: lengthNoCRLF})
	if err != nil {
		return err
	}

	fmt.Println(n)
	return nil
}

var indexFrom int64

var indexCmd = &cobra.Command{
	Use:   "index <file> <pattern>",
	Short: "Find the first occurrence of a pattern",
	Long: `Print the character index of the first occurrence of pattern at or after
--from, or -1 when it does not occur.

Examples:
  bigtext index huge.log "ERROR"
  bigtext index huge.log "ERROR" --from 5000`,
	Args: cobra.ExactArgs(2),
	RunE: runIndex,
}

var containsCmd = &cobra.Command{
	Use:   "contains <file> <pattern>",
	Short: "Report whether a pattern occurs",
	Long: `Print true when pattern occurs in the file, false otherwise. The exit
status is 0 either way.

Examples:
  bigtext contains huge.log "panic:"`,
	Args: cobra.ExactArgs(2),
	RunE: runContains,
}

func init() {
	indexCmd.Flags().Int64Var(&indexFrom, "from", 0, "Character index to start searching at")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	i, err := svc.IndexOf(ctx, types.IndexRequest{Source: source(args[0]), Pattern: args[1], From: indexFrom})
	if err != nil {
		return err
	}

	fmt.Println(i)
	return nil
}

func runContains(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ok, err := svc.Contains(ctx, types.IndexRequest{Source: source(args[0]), Pattern: args[1]})
	if err != nil {
		return err
	}

	fmt.Println(ok)
	return nil
}

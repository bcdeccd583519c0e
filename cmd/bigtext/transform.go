package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shivavenkatesh/bigtext/internal/bigtext"
	"github.com/shivavenkatesh/bigtext/pkg/types"
	"github.com/spf13/cobra"
)

// runOutput opens the service, runs op and prints the output paths
func runOutput(op func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error)) error {
	ctx := context.Background()

	svc, _, err := initService()
	if err != nil {
		return err
	}
	defer svc.Close()

	resp, err := op(ctx, svc)
	if err != nil {
		return err
	}

	printOutputs(resp)
	return nil
}

var replaceFirst bool

var replaceCmd = &cobra.Command{
	Use:   "replace <file> <old> <new>",
	Short: "Replace occurrences of a string",
	Long: `Write a copy of the file with every occurrence of old replaced by new.
An empty old string inserts new before every character and at the end.

Examples:
  bigtext replace huge.log "foo" "bar"
  bigtext replace huge.log "foo" "bar" --first`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Replace(ctx, types.ReplaceRequest{
				Source: source(args[0]),
				Old:    args[1],
				New:    args[2],
				First:  replaceFirst,
			})
		})
	},
}

var splitLimit int

var splitCmd = &cobra.Command{
	Use:   "split <file> <separator>",
	Short: "Split a file into parts",
	Long: `Write the text between separators to numbered files. With --limit n the
last part holds the unsplit remainder.

Examples:
  bigtext split huge.csv $'\n' --limit 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Split(ctx, types.SplitRequest{
				Source:    source(args[0]),
				Separator: args[1],
				Limit:     splitLimit,
			})
		})
	},
}

var (
	joinDelim string
	joinTexts []string
	joinFiles []string
)

var joinCmd = &cobra.Command{
	Use:   "join <file>",
	Short: "Append texts and files to a file",
	Long: `Write the file followed by each --text and then each --file, separated by
the delimiter.

Examples:
  bigtext join a.txt --delim $'\n' --file b.txt --file c.txt
  bigtext join a.txt --delim ", " --text "tail"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var parts []types.JoinPart
		for _, t := range joinTexts {
			parts = append(parts, types.JoinPart{Text: t})
		}
		for _, f := range joinFiles {
			src := source(f)
			parts = append(parts, types.JoinPart{File: &src})
		}

		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Join(ctx, types.JoinRequest{
				Source:    source(args[0]),
				Delimiter: joinDelim,
				Parts:     parts,
			})
		})
	},
}

var (
	insertAt   int64
	insertText string
	insertFile string
)

var insertCmd = &cobra.Command{
	Use:   "insert <file>",
	Short: "Insert text or a file at a character offset",
	Long: `Write a copy of the file with --text or the contents of --file inserted
before the character at --at. An offset equal to the length appends.

Examples:
  bigtext insert huge.log --at 0 --text "header\n"
  bigtext insert huge.log --at 1024 --file patch.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if insertText != "" && insertFile != "" {
			return fmt.Errorf("use either --text or --file, not both")
		}

		req := types.InsertRequest{Source: source(args[0]), Offset: insertAt, Text: insertText}
		if insertFile != "" {
			src := source(insertFile)
			req.File = &src
		}

		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Insert(ctx, req)
		})
	},
}

var caseLocale string

var upperCmd = &cobra.Command{
	Use:   "upper <file>",
	Short: "Write an upper-cased copy",
	Long: `Write an upper-cased copy of the file using the case rules of --locale.

Examples:
  bigtext upper notes.txt
  bigtext upper notes.txt --locale tr`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCase(args[0], true)
	},
}

var lowerCmd = &cobra.Command{
	Use:   "lower <file>",
	Short: "Write a lower-cased copy",
	Long: `Write a lower-cased copy of the file using the case rules of --locale.

Examples:
  bigtext lower NOTES.TXT --locale de`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCase(args[0], false)
	},
}

func runCase(path string, upper bool) error {
	return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
		return svc.ChangeCase(ctx, types.CaseRequest{Source: source(path), Upper: upper, Locale: caseLocale})
	})
}

var trimNoCRLF bool

var trimCmd = &cobra.Command{
	Use:   "trim <file>",
	Short: "Strip leading and trailing whitespace",
	Long: `Write a copy of the file without leading and trailing spaces.
Line breaks are kept unless --no-crlf is given.

Examples:
  bigtext trim padded.txt
  bigtext trim padded.txt --no-crlf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Trim(ctx, types.TrimRequest{Source: source(args[0]), NoCRLF: trimNoCRLF})
		})
	},
}

var substrCmd = &cobra.Command{
	Use:   "substr <file> <begin> <end>",
	Short: "Extract a character range",
	Long: `Write the characters in [begin, end) to a new file.

Examples:
  bigtext substr huge.log 1000 2000`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		begin, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid begin %q: %w", args[1], err)
		}
		end, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid end %q: %w", args[2], err)
		}

		return runOutput(func(ctx context.Context, svc bigtext.Service) (*types.OutputResponse, error) {
			return svc.Substring(ctx, types.SubstringRequest{Source: source(args[0]), Begin: begin, End: end})
		})
	},
}

func init() {
	replaceCmd.Flags().BoolVar(&replaceFirst, "first", false, "Replace only the first occurrence")
	splitCmd.Flags().IntVarP(&splitLimit, "limit", "n", 0, "Maximum number of parts (0 for no limit)")
	joinCmd.Flags().StringVarP(&joinDelim, "delim", "d", "", "Delimiter placed before each part")
	joinCmd.Flags().StringArrayVar(&joinTexts, "text", nil, "Text to append (repeatable)")
	joinCmd.Flags().StringArrayVar(&joinFiles, "file", nil, "File to append (repeatable)")
	insertCmd.Flags().Int64Var(&insertAt, "at", 0, "Character offset to insert at")
	insertCmd.Flags().StringVar(&insertText, "text", "", "Text to insert")
	insertCmd.Flags().StringVar(&insertFile, "file", "", "File whose contents to insert")
	upperCmd.Flags().StringVar(&caseLocale, "locale", "", "BCP 47 language tag for case rules")
	lowerCmd.Flags().StringVar(&caseLocale, "locale", "", "BCP 47 language tag for case rules")
	trimCmd.Flags().BoolVar(&trimNoCRLF, "no-crlf", false, "Strip leading and trailing CR and LF as well")
}

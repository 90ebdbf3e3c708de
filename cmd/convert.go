package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	mdfxerrors "github.com/mdfx-dev/mdfx/internal/errors"
	"github.com/mdfx-dev/mdfx/internal/parser"
	"github.com/mdfx-dev/mdfx/internal/pipeline"
	"github.com/mdfx-dev/mdfx/internal/registry"
	"github.com/mdfx-dev/mdfx/internal/renderer"
	"github.com/mdfx-dev/mdfx/internal/types"
)

var (
	convertStyle     string
	convertSeparator string
	convertSpacing   int
)

var convertCmd = &cobra.Command{
	Use:   "convert --style <id> <text...>",
	Short: "Apply one Unicode style to text directly",
	Long: `Convert styles the given text without reading a document, useful for
one-off headings or shell pipelines.

Examples:
  mdfx convert --style mathbold "RELEASE NOTES"
  mdfx convert --style fullwidth --separator dot "TITLE"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertStyle, "style", "s", "", "style id or alias")
	convertCmd.Flags().StringVar(&convertSeparator, "separator", "",
		"separator name or single character inserted between characters")
	convertCmd.Flags().IntVar(&convertSpacing, "spacing", 0,
		"spaces inserted between characters")
	_ = convertCmd.MarkFlagRequired("style")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	reg := pl.Registry()

	// The text is styled as-is, never parsed: braces, colons, and tag
	// syntax in the arguments stay literal. Build the node directly.
	def, ok := reg.Style(convertStyle)
	if !ok {
		unknownErr := mdfxerrors.UnknownID(mdfxerrors.CodeUnknownStyle,
			"style", convertStyle, -1)
		return unknownErr.WithSuggestions(reg.Suggest(registry.NamespaceStyle, convertStyle))
	}

	node := &types.StyleNode{
		ID:       def.ID,
		Offset:   -1,
		Children: []types.Node{&types.TextNode{Text: strings.Join(args, " ")}},
	}
	if convertSeparator != "" {
		spec, err := parser.New(reg, parser.Options{}).Separator(convertSeparator)
		if err != nil {
			return err
		}
		node.Separator = spec
	}
	if convertSpacing < 0 {
		return mdfxerrors.InvalidParameter("spacing",
			fmt.Sprintf("%d", convertSpacing), "must be a non-negative integer", -1)
	}
	if convertSpacing > 0 {
		spacing := convertSpacing
		node.Spacing = &spacing
	}

	out, diags, err := renderer.New(reg).Render([]types.Node{node}, types.TargetNpm)
	printDiagnostics(cmd.ErrOrStderr(), diags)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

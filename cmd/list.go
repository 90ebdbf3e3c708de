package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mdfx-dev/mdfx/internal/pipeline"
	"github.com/mdfx-dev/mdfx/internal/registry"
)

var listSections = []struct {
	name string
	ns   registry.Namespace
}{
	{"styles", registry.NamespaceStyle},
	{"frames", registry.NamespaceFrame},
	{"badges", registry.NamespaceBadge},
	{"glyphs", registry.NamespaceGlyph},
	{"separators", registry.NamespaceSeparator},
	{"components", registry.NamespaceComponent},
	{"palette", registry.NamespacePalette},
}

var listCmd = &cobra.Command{
	Use:   "list [section]",
	Short: "List registry contents",
	Long: `List enumerates the definitions available to documents: styles,
frames, badges, glyphs, separators, components, and palette colors.
Overlay directories from the configuration are included.

Examples:
  mdfx list
  mdfx list styles`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: sectionNames(),
	RunE:      runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func sectionNames() []string {
	names := make([]string, len(listSections))
	for i, s := range listSections {
		names[i] = s.name
	}
	return names
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	pl, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	reg := pl.Registry()

	only := ""
	if len(args) == 1 {
		only = args[0]
	}

	title := cases.Title(language.English)
	matched := false
	for _, section := range listSections {
		if only != "" && section.name != only {
			continue
		}
		matched = true
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title.String(section.name))
		printSection(cmd.OutOrStdout(), reg, section.ns)
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if !matched {
		return fmt.Errorf("unknown section %q, expected one of %s",
			only, strings.Join(sectionNames(), ", "))
	}
	return nil
}

func printSection(w io.Writer, reg *registry.Registry, ns registry.Namespace) {
	for _, id := range reg.IDs(ns) {
		aliases := reg.Aliases(ns, id)
		if len(aliases) > 0 {
			fmt.Fprintf(w, "  %-16s (%s)\n", id, strings.Join(aliases, ", "))
		} else {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
}

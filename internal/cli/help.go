package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/phonekit/phonekit/internal/cli/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Command group IDs.
const (
	groupPhone  = "phone"
	groupLookup = "lookup"
	groupServe  = "serve"
	groupConfig = "config"
)

var commandGroups = map[string]string{
	"parse":     groupPhone,
	"format":    groupPhone,
	"validate":  groupPhone,
	"batch":     groupPhone,
	"countries": groupLookup,
	"formats":   groupLookup,
	"serve":     groupServe,
	"mcp":       groupServe,
	"config":    groupConfig,
	"version":   groupConfig,
}

// patternTokens is the token legend shown under the root help.
var patternTokens = [][2]string{
	{"%c", "dialing code"},
	{"%a", "area code"},
	{"%A", "area code with trunk 0"},
	{"%n", "area code + subscriber number"},
	{"%f", "first 3 subscriber digits"},
	{"%l", "remaining subscriber digits"},
	{"%x", "extension"},
}

// initHelp wires up styled help/usage rendering and command groups.
func initHelp() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupPhone, Title: "PHONE NUMBERS"},
		&cobra.Group{ID: groupLookup, Title: "COUNTRIES & FORMATS"},
		&cobra.Group{ID: groupServe, Title: "SERVERS"},
		&cobra.Group{ID: groupConfig, Title: "CONFIGURATION"},
	)
	for _, cmd := range rootCmd.Commands() {
		cmd.GroupID = commandGroups[cmd.Name()]
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		writeHelp(cmd.ErrOrStderr(), cmd, colorEnabled())
	})
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		writeHelp(cmd.ErrOrStderr(), cmd, colorEnabled())
		return nil
	})
}

// writeHelp renders the help page for cmd.
func writeHelp(w io.Writer, cmd *cobra.Command, c bool) {
	section := func(title string) { fmt.Fprintf(w, "%s\n", boldCyan(title, c)) }

	fmt.Fprintln(w)
	if cmd == rootCmd {
		fmt.Fprintf(w, "  %s %s\n\n", ui.BrandEmoji, boldCyan("phonekit", c))
	}
	about := cmd.Long
	if about == "" {
		about = cmd.Short
	}
	for _, line := range strings.Split(about, "\n") {
		switch {
		case strings.TrimSpace(line) == "":
			fmt.Fprintln(w)
		case strings.HasPrefix(line, "  "):
			fmt.Fprintf(w, "    %s\n", green(strings.TrimSpace(line), c))
		default:
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintln(w)

	section("USAGE")
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s [command]\n\n", cmd.CommandPath())
	} else {
		fmt.Fprintf(w, "  %s\n\n", cmd.UseLine())
	}

	if cmd.Example != "" {
		section("EXAMPLES")
		for _, line := range strings.Split(cmd.Example, "\n") {
			fmt.Fprintf(w, "  %s\n", green(line, c))
		}
		fmt.Fprintln(w)
	}

	for _, g := range commandSections(cmd) {
		section(g.title)
		writeCommandList(w, g.cmds, c)
		fmt.Fprintln(w)
	}

	if cmd == rootCmd {
		writeFlagSection(w, "FLAGS", cmd.Flags(), c)
		section("PATTERN TOKENS")
		for _, tok := range patternTokens {
			fmt.Fprintf(w, "  %s  %s\n", green(tok[0], c), dim(tok[1], c))
		}
		fmt.Fprintln(w)
	} else {
		writeFlagSection(w, "FLAGS", cmd.LocalNonPersistentFlags(), c)
		writeFlagSection(w, "GLOBAL FLAGS", cmd.InheritedFlags(), c)
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("Use %q for more information about a command.", cmd.CommandPath()+" [command] --help"), c))
	}
}

type commandSection struct {
	title string
	cmds  []*cobra.Command
}

// commandSections groups the available subcommands of cmd by help group.
// Subcommands without a group land in a trailing COMMANDS section.
func commandSections(cmd *cobra.Command) []commandSection {
	byGroup := make(map[string][]*cobra.Command)
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			byGroup[sub.GroupID] = append(byGroup[sub.GroupID], sub)
		}
	}

	var sections []commandSection
	for _, g := range cmd.Groups() {
		if cmds := byGroup[g.ID]; len(cmds) > 0 {
			sections = append(sections, commandSection{g.Title, cmds})
		}
	}
	if cmds := byGroup[""]; len(cmds) > 0 {
		sections = append(sections, commandSection{"COMMANDS", cmds})
	}
	return sections
}

func writeCommandList(w io.Writer, cmds []*cobra.Command, c bool) {
	width := 0
	for _, cmd := range cmds {
		width = max(width, len(cmd.Name()))
	}
	for _, cmd := range cmds {
		fmt.Fprintf(w, "  %s%s\n", bold(fmt.Sprintf("%-*s", width+4, cmd.Name()), c), dim(cmd.Short, c))
	}
}

// writeFlagSection prints the visible flags of fs with the names in cyan.
// pflag aligns descriptions after a run of three or more spaces.
func writeFlagSection(w io.Writer, title string, fs *pflag.FlagSet, c bool) {
	usage := strings.TrimRight(fs.FlagUsages(), "\n")
	if strings.TrimSpace(usage) == "" {
		return
	}
	fmt.Fprintf(w, "%s\n", boldCyan(title, c))
	for _, line := range strings.Split(usage, "\n") {
		name, desc, found := strings.Cut(strings.TrimLeft(line, " "), "   ")
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		if !found || !c {
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintf(w, "%s%s   %s\n", indent, cyan(name, c), dim(strings.TrimLeft(desc, " "), c))
	}
	fmt.Fprintln(w)
}

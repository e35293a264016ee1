// Package cli holds the studyroom command tree. Every command builds the room through
// bootstrap, so the TUI, the line REPL and the one-shot commands share one store.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studyroom/internal/bootstrap"
	"studyroom/internal/config"
	"studyroom/internal/tui"
)

// rootFlags 持久化参数，所有子命令共享
// rootFlags are the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	home       string
	lang       string
	ephemeral  bool
}

// NewRootCmd 构建命令树。每次调用返回全新的树，测试之间互不影响。
// NewRootCmd builds a fresh command tree. Running without a subcommand opens the TUI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "studyroom",
		Short: "A quiet study room with a focus timer, a task list and an AI companion",
		Long: `# studyroom

**A quiet study room in your terminal.**

- Focus timer that keeps your total study time
- Task list with progress
- An AI study companion on any OpenAI-compatible endpoint

Run **studyroom** for the full-screen room, or **studyroom repl** for a plain line mode.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.build(false)
			if err != nil {
				return err
			}
			defer res.Close()

			if _, _, err := res.Room.Resume(); err != nil {
				return err
			}
			return tui.Run(res.Room)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd.OutOrStdout(), cmd)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a config file (JSON with comments)")
	pf.StringVar(&flags.home, "home", "", "data directory (default ~/.studyroom)")
	pf.StringVar(&flags.lang, "lang", "", "interface language: en or zh")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep everything in memory for this run")

	root.AddCommand(
		newReplCmd(flags),
		newStatusCmd(flags),
		newModelsCmd(flags),
		newImportCmd(flags),
		newInitCmd(flags),
	)
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (f *rootFlags) build(consoleLog bool) (*bootstrap.BuildResult, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Override(f.home, f.lang); err != nil {
		return nil, err
	}
	return bootstrap.Build(cfg, bootstrap.Options{
		Ephemeral:  f.ephemeral,
		ConsoleLog: consoleLog,
	})
}

// renderMarkdownHelp 用 Glamour 渲染帮助
// renderMarkdownHelp renders command help as markdown through Glamour.
func renderMarkdownHelp(w io.Writer, cmd *cobra.Command) {
	var b strings.Builder
	if cmd.Long != "" {
		b.WriteString(cmd.Long)
	} else {
		b.WriteString("# " + cmd.Short)
	}
	b.WriteString("\n\n## Usage\n\n```\n")
	b.WriteString(cmd.UseLine())
	b.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		b.WriteString("## Commands\n\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(&b, "- **%s** %s\n", sub.Name(), sub.Short)
			}
		}
		b.WriteString("\n")
	}
	if cmd.HasAvailableLocalFlags() {
		b.WriteString("## Flags\n\n```\n")
		b.WriteString(cmd.LocalFlags().FlagUsages())
		b.WriteString("```\n\n")
	}
	if cmd.HasAvailableInheritedFlags() {
		b.WriteString("## Global flags\n\n```\n")
		b.WriteString(cmd.InheritedFlags().FlagUsages())
		b.WriteString("```\n")
	}

	fmt.Fprintln(w, tui.RenderMarkdown(b.String(), 100))
}

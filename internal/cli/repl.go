package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"studyroom/internal/logger"
	"studyroom/internal/repl"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Line-mode study room for plain terminals and scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.build(false)
			if err != nil {
				return err
			}
			defer res.Close()

			if _, _, err := res.Room.Resume(); err != nil {
				return err
			}

			input := lineInput(cmd, filepath.Join(res.Config.Storage.BaseDir, "repl.history"))
			defer input.Close()

			color := false
			if f, ok := cmd.OutOrStdout().(*os.File); ok {
				color = repl.ColorEnabled(f)
			}
			loop := repl.NewLoop(res.Room, input, cmd.OutOrStdout(), repl.Options{Color: color})
			return loop.Run(cmd.Context())
		},
	}
}

// lineInput 终端上使用 readline，管道或测试输入退回逐行读取
// lineInput uses readline on a terminal and plain line reads otherwise.
func lineInput(cmd *cobra.Command, historyPath string) repl.LineInput {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		in, err := repl.NewLineInput(historyPath)
		if err == nil {
			return in
		}
		log := logger.With("cli")
		log.Warn().Err(err).Msg("readline unavailable, using plain input")
	}
	return repl.NewBasicLineInput(cmd.InOrStdin(), cmd.OutOrStdout())
}

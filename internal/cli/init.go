package cli

import (
	"github.com/spf13/cobra"

	"studyroom/internal/config"
	"studyroom/internal/i18n"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a project config template to <dir>/.studyroom/config.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return err
			}
			cmd.Println(i18n.New(flags.lang).T("cli.init.done", path))
			return nil
		},
	}
}

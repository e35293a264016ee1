package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studyroom/internal/room"
)

func newModelsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the configured companion endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.build(false)
			if err != nil {
				return err
			}
			defer res.Close()

			s, ok, err := res.Room.Resume()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("list models: %w", room.ErrLoggedOut)
			}

			models, err := res.Provider.ListModels(cmd.Context(), s.Companion.Config().Endpoint())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintln(out, res.Translator.T("cli.models.none"))
				return nil
			}
			for _, m := range models {
				if m.OwnedBy == "" {
					fmt.Fprintln(out, m.ID)
					continue
				}
				fmt.Fprintf(out, "%-32s %s\n", m.ID, m.OwnedBy)
			}
			return nil
		},
	}
}

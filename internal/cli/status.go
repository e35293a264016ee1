package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"studyroom/internal/timer"
)

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the logged-in user, study time, task progress and companion model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := flags.build(false)
			if err != nil {
				return err
			}
			defer res.Close()

			tr := res.Translator
			out := cmd.OutOrStdout()
			s, ok, err := res.Room.Resume()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, tr.T("room.not_logged"))
				return nil
			}

			st := s.Timer.Snapshot()
			done, total := s.Tasks.Progress()
			cfg := s.Companion.Config()

			fmt.Fprintln(out, tr.T("cli.status.owner", s.Identity.Name))
			fmt.Fprintf(out, "%-16s%s\n", tr.T("room.current"), timer.FormatClock(st.CurrentSeconds))
			fmt.Fprintf(out, "%-16s%s\n", tr.T("room.total"), timer.FormatClock(st.CumulativeSeconds))
			fmt.Fprintln(out, tr.T("todo.progress", done, total))
			fmt.Fprintf(out, "%-16s%s\n", tr.T("config.model"), cfg.Model)
			fmt.Fprintf(out, "%-16s%s\n", tr.T("config.api_key"), cfg.MaskedKey())
			return nil
		},
	}
}

package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"studyroom/internal/storage"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "import-legacy <file|->",
		Short: "Import a localStorage dump from the browser version",
		Long: `# import-legacy

Reads a JSON object of localStorage keys and values exported from the browser build
and stores them under the user's name. Values that already exist are kept.

Pass **-** to read the dump from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			res, err := flags.build(false)
			if err != nil {
				return err
			}
			defer res.Close()

			report, err := storage.ImportLegacy(res.Store, r, owner)
			if err != nil {
				return err
			}
			cmd.Println(res.Translator.T("cli.import.done", len(report.Imported), report.Owner, len(report.Skipped)))
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user name to import under (default: the name in the dump)")
	return cmd
}

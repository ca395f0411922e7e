package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List spreadsheet ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		withTitles, err := cmd.Flags().GetBool("titles")
		if err != nil {
			return fmt.Errorf("failed to get titles flag: %w", err)
		}

		c, err := openCollection(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		docs, err := c.Spreadsheets(ctx)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, ss := range docs {
			if !withTitles {
				fmt.Fprintln(w, ss.ID())
				continue
			}
			// one metadata fetch per document
			title, err := ss.Title(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\n", ss.ID(), title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolP("titles", "t", false, "Print titles next to ids")
}

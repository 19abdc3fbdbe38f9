package main

import (
	"fmt"
	"os"

	"classlink-portal/internal/links"
	"classlink-portal/internal/roster"

	"github.com/spf13/cobra"
)

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "import <file>",
		Short:   "import students from a CSV or XLSX file",
		Example: "classlink import roster.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(loadConfig(opts))
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			summary, err := roster.NewManager(store).ImportFile(cmd.Context(), args[0], f)
			fmt.Fprintf(cmd.OutOrStdout(), "rows=%d inserted=%d skipped=%d rejected=%d short=%d\n",
				summary.Rows, summary.Inserted, summary.Skipped, summary.Rejected, summary.Short)
			return err
		},
	}
}

func resetLinksCmd(opts *options) *cobra.Command {
	var className string

	command := &cobra.Command{
		Use:   "reset-links",
		Short: "deactivate active links",
		Long:  `deactivate the active link of one class, or of every class when --class is not given`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeDB, err := openStore(loadConfig(opts))
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := links.NewManager(store).ResetActiveLinks(cmd.Context(), className)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d active links\n", n)
			return nil
		},
	}
	command.Flags().StringVarP(&className, "class", "c", "", "class to reset (default all classes)")
	return command
}

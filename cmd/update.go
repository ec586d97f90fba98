package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/discrepancy-api/internal/model"
)

var updateCmd = &cobra.Command{
	Use:   "update <company> <field> <value>",
	Short: "Set one field for a company and persist the database",
	Long:  "Values parse the same way table cells do: numeric strings become numbers, an empty string clears the field.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		table, err := env.store.LoadTable(ctx)
		if err != nil {
			return eris.Wrap(err, "load table")
		}

		keyValue := model.ParseValue(args[0])
		newValue := model.ParseValue(args[2])
		if err := table.ApplyUpdate(cfg.KeyField, keyValue, args[1], newValue); err != nil {
			return err
		}

		if err := env.store.SaveTable(ctx, table); err != nil {
			return eris.Wrap(err, "save table")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated %s: %s = %s\n", args[0], args[1], args[2])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

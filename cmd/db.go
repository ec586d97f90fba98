package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Print the canonical database as JSON records",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		table, err := env.store.LoadTable(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "load table")
		}

		out, err := json.MarshalIndent(table.Records, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal records")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

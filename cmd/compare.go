package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/discrepancy-api/internal/model"
	"github.com/sells-group/discrepancy-api/internal/reconcile"
)

var compareCmd = &cobra.Command{
	Use:   "compare <filename>",
	Short: "Extract a known PDF and reconcile it against the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		name := strings.ToLower(filepath.Base(args[0]))
		docPath, ok := cfg.Documents[name]
		if !ok {
			return eris.Errorf("unknown document: %s", name)
		}

		ctx := cmd.Context()
		extracted, err := env.extractor.Extract(ctx, docPath)
		if err != nil {
			return eris.Wrapf(err, "extract %s", name)
		}

		table, err := env.store.LoadTable(ctx)
		if err != nil {
			return eris.Wrap(err, "load table")
		}

		keyValue, ok := extracted.Get(cfg.KeyField)
		if !ok || keyValue == nil || keyValue == "" {
			return eris.Errorf("%s not found in the PDF", cfg.KeyField)
		}

		stored := table.FindByKey(cfg.KeyField, keyValue)
		if stored == nil {
			return eris.Errorf("no data found for company: %s", model.FormatValue(keyValue))
		}

		report := reconcile.Reconcile(stored, extracted)
		zap.L().Info("reconciled",
			zap.String("document", name),
			zap.Int("mismatches", len(report.Mismatches())),
		)

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

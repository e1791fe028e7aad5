package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/storage"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.pdf>",
		Short: "Parse one lab report and store its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			birthday, _ := cmd.Flags().GetString("birthday")

			metadata, err := bloodwork.NewMetadata(name, birthday)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			resp, err := newIngestService(cfg, store).IngestFile(cmd.Context(), args[0], metadata)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().String("name", "", "Patient name stored with every result")
	cmd.Flags().String("birthday", "", "Patient birthday (DD/MM/YYYY)")
	return cmd
}

func resultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print stored results between two dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startArg, _ := cmd.Flags().GetString("start")
			endArg, _ := cmd.Flags().GetString("end")
			tests, _ := cmd.Flags().GetStringSlice("tests")

			start, err := parseDateFlag("start", startArg)
			if err != nil {
				return err
			}
			end, err := parseDateFlag("end", endArg)
			if err != nil {
				return err
			}
			if end.Before(start) {
				return errors.New("--end must not be before --start")
			}

			return withStore(cmd, func(store *resultStore) error {
				table, err := store.adapter.QueryResult(cmd.Context(), start, end, tests)
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().String("start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringSlice("tests", nil, "Restrict to these test names")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the stored values of one test, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			testName, _ := cmd.Flags().GetString("test")
			limit, _ := cmd.Flags().GetInt("limit")

			return withStore(cmd, func(store *resultStore) error {
				table, err := store.adapter.HistoryResult(cmd.Context(), testName, limit)
				if err != nil {
					return err
				}
				return writeTable(cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().String("test", "", "Test name as printed on the report")
	cmd.Flags().Int("limit", storage.DefaultHistoryLimit, "Maximum number of values")
	_ = cmd.MarkFlagRequired("test")
	return cmd
}

func deleteDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-date <YYYY-MM-DD>",
		Short: "Delete every result stored for one report date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseDateFlag("date", args[0]); err != nil {
				return err
			}

			return withStore(cmd, func(store *resultStore) error {
				if !store.adapter.DeleteDate(cmd.Context(), args[0]) {
					return fmt.Errorf("failed to delete results for %s", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted all results for %s\n", args[0])
				return nil
			})
		},
	}
}

func initStoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-store",
		Short: "Create the results table and index in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return errors.New("init-store needs --database-url")
			}

			// openStore creates the schema.
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stats := store.postgres.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Store ready: measurement %s (%d/%d connections)\n",
				store.adapter.Measurement(), stats.TotalConns, stats.MaxConns)
			return nil
		},
	}
}

func withStore(cmd *cobra.Command, fn func(store *resultStore) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func parseDateFlag(name, value string) (time.Time, error) {
	t, err := time.Parse(bloodwork.StorageDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format: %q", name, value)
	}
	return t, nil
}

func writeTable(w io.Writer, table storage.Table) error {
	if table == nil {
		table = storage.Table{}
	}
	return writeJSON(w, table)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

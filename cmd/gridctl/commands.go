package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/config"
	"github.com/JonMunkholm/gridadmin/internal/datasource"
	"github.com/JonMunkholm/gridadmin/internal/export"
	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/spf13/cobra"
)

// app holds flags shared by every command.
type app struct {
	backend string
	timeout time.Duration
	format  string

	// newSource is swapped in tests.
	newSource func(url string, timeout time.Duration) datasource.Source
}

func newRootCmd() *cobra.Command {
	a := &app{
		newSource: func(url string, timeout time.Duration) datasource.Source {
			return datasource.NewHTTPSource(url, timeout)
		},
	}

	root := &cobra.Command{
		Use:           "gridctl",
		Short:         "Inspect and edit admin tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.backend != "" {
				return nil
			}
			// Offline commands read --in and never reach the backend.
			if in := cmd.Flags().Lookup("in"); in != nil && in.Changed {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.backend = cfg.Backend.URL
			if !cmd.Flags().Changed("timeout") {
				a.timeout = cfg.Backend.Timeout
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "backend base URL (default: BACKEND_URL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 10*time.Second, "backend request timeout")
	root.PersistentFlags().StringVar(&a.format, "format", "json", "table output: json or csv")

	root.AddCommand(a.tablesCmd(), a.pasteCmd(), a.bulkAddCmd(), a.exportCmd())
	return root
}

func (a *app) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List backend tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := a.source().ListTables(cmd.Context())
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			for _, t := range tables {
				fmt.Fprintf(out, "%s\t%s\n", t, grid.DisplayTitle(t))
			}
			return nil
		},
	}
}

// tableFlags selects where a command's table comes from.
type tableFlags struct {
	in    string
	table string
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.in, "in", "", "JSON file of records")
	cmd.Flags().StringVar(&f.table, "table", "", "backend table id")
	cmd.MarkFlagsOneRequired("in", "table")
	cmd.MarkFlagsMutuallyExclusive("in", "table")
}

// load returns a store holding the selected table.
func (a *app) load(ctx context.Context, f tableFlags) (*grid.Store, string, error) {
	store := grid.NewStore()
	if f.in != "" {
		file, err := os.Open(f.in)
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		cols, recs, err := datasource.DecodeRecords(file)
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.in, err)
		}
		store.Load(cols, recs)
		name := strings.TrimSuffix(filepath.Base(f.in), filepath.Ext(f.in))
		return store, name, nil
	}

	t, err := a.source().FetchTable(ctx, f.table)
	if err != nil {
		return nil, "", describe(err)
	}
	store.Load(t.Columns, t.Records)
	return store, t.ID, nil
}

func (a *app) pasteCmd() *cobra.Command {
	var (
		tf     tableFlags
		text   textFlags
		row    int
		column string
	)
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste tab or comma separated text at a cell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.load(cmd.Context(), tf)
			if err != nil {
				return err
			}
			raw, err := text.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := store.Paste(raw, row, column)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), grid.PasteSummary(res))
			return a.printTable(cmd.OutOrStdout(), store)
		},
	}
	tf.register(cmd)
	text.register(cmd)
	cmd.Flags().IntVar(&row, "row", 0, "anchor row index")
	cmd.Flags().StringVar(&column, "column", "", "anchor column name")
	cmd.MarkFlagRequired("column")
	return cmd
}

func (a *app) bulkAddCmd() *cobra.Command {
	var (
		tf      tableFlags
		text    textFlags
		maxRows int
	)
	cmd := &cobra.Command{
		Use:   "bulk-add",
		Short: "Append one row per line of text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.load(cmd.Context(), tf)
			if err != nil {
				return err
			}
			raw, err := text.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := store.BulkAdd(raw, maxRows)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), grid.BulkSummary(res))
			return a.printTable(cmd.OutOrStdout(), store)
		},
	}
	tf.register(cmd)
	text.register(cmd)
	cmd.Flags().IntVar(&maxRows, "max-rows", grid.DefaultMaxBulkRows, "reject input with more lines than this")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		tf  tableFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a table to .csv or .xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".csv" && ext != ".xlsx" {
				return fmt.Errorf("unsupported output %q: use .csv or .xlsx", out)
			}
			store, name, err := a.load(cmd.Context(), tf)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if ext == ".xlsx" {
				err = export.WriteXLSX(f, name, store.Columns(), store.Rows())
			} else {
				err = export.WriteCSV(f, store.Columns(), store.Rows())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", store.Len(), out)
			return f.Close()
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.csv or .xlsx)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) source() datasource.Source {
	return a.newSource(a.backend, a.timeout)
}

func (a *app) printTable(w io.Writer, store *grid.Store) error {
	switch a.format {
	case "csv":
		return export.WriteCSV(w, store.Columns(), store.Rows())
	case "json":
		return datasource.EncodeRecords(w, store.Columns(), store.Rows())
	default:
		return fmt.Errorf("unknown format %q: use json or csv", a.format)
	}
}

// describe prefixes err with its user-facing message and support code.
func describe(err error) error {
	msg := grid.MapError(err)
	return fmt.Errorf("%s (%s): %w", msg.Message, msg.Code, err)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"enigma/internal/config"
	"enigma/internal/repository/sqlite"
	"enigma/internal/service"
)

// openService opens the database named in cfg and returns a service over it
func openService(cfg *config.Config) (*service.CipherService, func(), error) {
	settings, err := cfg.Machine.Settings()
	if err != nil {
		return nil, nil, fmt.Errorf("default machine: %w", err)
	}
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	svc, err := service.NewCipherService(repo, service.NewEventBus(), nil, settings)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return svc, func() { repo.Close() }, nil
}

func newSheetCmd(opts *globalOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Import and export key sheets",
		Long: `Key sheets are named lists of machine settings, one per label
(typically a day of the month). Imported entries are stored as
"<sheet>/<label>" and can be selected with "settings_name" in API requests.

Subcommands:
  import FILE  - store every entry of a YAML or JSON key sheet
  export       - write stored settings as a key sheet`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: from config)")

	loadWithDB := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, _, err := opts.load()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("db") {
			cfg.Database.Path = dbPath
		}
		return cfg, nil
	}

	var importFormat string
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a key sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDB(cmd)
			if err != nil {
				return err
			}
			svc, closeDB, err := openService(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open key sheet: %w", err)
			}
			defer file.Close()

			format := importFormat
			if format == "" {
				format = formatFromPath(args[0])
			}
			result, err := svc.ImportSheet(context.Background(), format, file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d entries from %s\n", len(result.Names), args[0])
			for _, name := range result.Names {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
	importCmd.Flags().StringVar(&importFormat, "format", "", "yaml or json (default: from file extension)")

	var (
		exportFormat string
		exportSheet  string
		exportOut    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored settings as a key sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithDB(cmd)
			if err != nil {
				return err
			}
			svc, closeDB, err := openService(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			var w io.Writer = cmd.OutOrStdout()
			if exportOut != "" {
				file, err := os.Create(exportOut)
				if err != nil {
					return fmt.Errorf("create %s: %w", exportOut, err)
				}
				defer file.Close()
				w = file
			}
			return svc.ExportSheet(context.Background(), exportFormat, exportSheet, w)
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "yaml or json")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", "", "only export entries of this sheet")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: stdout)")

	cmd.AddCommand(importCmd, exportCmd)
	return cmd
}

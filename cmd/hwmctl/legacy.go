package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
)

func (cli *CLI) importLegacyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy <file>",
		Short: "Import a YAML or JSON list of legacy hwm records",
		Long: `Import legacy records, a list of objects with the fields hwmName, processName,
datasetQualifiedName, value, type and modifiedTime. Records without processName
get the process of the process flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "import legacy hwms"

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return NewStoreError(operation, err, "Check the file path")
			}
			// JSON documents are valid YAML
			var records []hwm.LegacyHWM
			if err := yaml.Unmarshal(raw, &records); err != nil {
				return NewValidationError(operation, "file", args[0], err, "The file should hold a list of legacy records")
			}

			return cli.withStore(operation, func(s store.Store) error {
				items := make([]hwm.HWM, 0, len(records))
				for i, rec := range records {
					var opts []hwm.Option
					if rec.ProcessName == "" {
						opts = append(opts, hwm.WithProcess(hwm.DefaultProcessStack.Current()))
					}
					h, err := hwm.FromLegacy(rec, opts...)
					if err != nil {
						return NewValidationError(operation, fmt.Sprintf("record %d", i), rec.HWMName, err)
					}
					items = append(items, h)
				}

				for _, h := range items {
					if err := s.Save(h); err != nil {
						return err
					}
				}
				cli.logger.Info("legacy hwms imported", "count", len(items), "file", args[0])
				return cli.render(items)
			})
		},
	}
}

func (cli *CLI) exportLegacyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-legacy",
		Short: "Print every hwm as legacy records, in YAML or, with --format json, JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withStore("export legacy hwms", func(s store.Store) error {
				items, err := s.List()
				if err != nil {
					return err
				}

				records := make([]hwm.LegacyHWM, 0, len(items))
				for _, h := range items {
					rec, err := hwm.ToLegacy(h)
					if err != nil {
						return err
					}
					records = append(records, rec)
				}

				if cli.v.GetString("format") == "json" {
					enc := json.NewEncoder(cli.out)
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}
				enc := yaml.NewEncoder(cli.out)
				enc.SetIndent(2)
				if err := enc.Encode(records); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

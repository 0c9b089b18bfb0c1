package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/types"
)

func (cli *CLI) setOffsetsCommand() *cobra.Command {
	var column, source string
	var offsets []string

	cmd := &cobra.Command{
		Use:   "set-offsets",
		Short: "Record per key offsets in a key_value_int hwm",
		Long: `Record per key offsets, e.g. the offsets reached in each partition of a topic.

Offsets are merged: new keys are added and known keys never move backwards.
--offset is "key=value" and can be repeated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "set offsets"

			c, err := types.ParseColumn(column)
			if err != nil {
				return NewValidationError(operation, "column", column, err)
			}
			t, err := types.ParseTable(source)
			if err != nil {
				return NewValidationError(operation, "source", source, err, `Use "db.table" or "db.table@instance"`)
			}

			return cli.withStore(operation, func(s store.Store) error {
				h, err := hwm.NewKeyValueIntHWM(c, t)
				if err != nil {
					return err
				}

				existing, err := s.Get(h.QualifiedName())
				switch {
				case err == nil:
					typed, ok := existing.(hwm.KeyValueIntHWM)
					if !ok {
						return NewTypeError(operation, h.QualifiedName(), existing, hwm.KindKeyValueInt)
					}
					h = typed
				case !errors.Is(err, store.ErrNotFound):
					return err
				}

				raw := strings.Join(offsets, "\n")
				updated, err := h.Update(raw)
				if err != nil {
					return NewValidationError(operation, "offset", raw, err, `Use --offset key=value, e.g. --offset 0=100`)
				}

				if err := s.Save(updated); err != nil {
					return err
				}
				cli.logger.Info("offsets saved", "qualified_name", updated.QualifiedName(), "keys", updated.Len())
				return cli.render([]hwm.HWM{updated})
			})
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Tracked expression, e.g. offset (required)")
	cmd.Flags().StringVar(&source, "source", "", "Source as db.table[@instance], e.g. cluster.topic (required)")
	cmd.Flags().StringArrayVar(&offsets, "offset", nil, "Offset as key=value (repeatable, required)")
	for _, name := range []string{"column", "source", "offset"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

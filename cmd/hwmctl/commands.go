package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/internal/matching"
	"github.com/arthur-debert/hwmstore/types"
)

func (cli *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List available hwm types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caser := cases.Title(language.Und)
			registry := hwm.DefaultRegistry()

			tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tTITLE\tALIASES")
			for _, kind := range registry.Known() {
				aliases := make([]string, 0)
				for _, alias := range registry.Aliases(kind) {
					aliases = append(aliases, string(alias))
				}
				title := caser.String(strings.ReplaceAll(string(kind), "_", " "))
				fmt.Fprintf(tw, "%s\t%s\t%s\n", kind, title, strings.Join(aliases, ", "))
			}
			return tw.Flush()
		},
	}
}

func (cli *CLI) listCommand() *cobra.Command {
	var rawFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the hwms of the store",
		Long: `List the hwms of the store, optionally filtered with --filter field=pattern.

Fields: ` + strings.Join(matching.Fields(), ", ") + `. Patterns follow shell globbing,
e.g. --filter kind=int --filter "source=shop.*".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "list hwms"

			filters := make([]matching.Filter, 0, len(rawFilters))
			for _, raw := range rawFilters {
				f, err := matching.ParseFilter(raw)
				if err != nil {
					return NewValidationError(operation, "filter", raw, err, "Known fields: "+strings.Join(matching.Fields(), ", "))
				}
				filters = append(filters, f)
			}
			matcher := matching.NewMatcher(filters...)

			return cli.withStore(operation, func(s store.Store) error {
				items, err := s.List()
				if err != nil {
					return err
				}
				return cli.render(matcher.Select(items))
			})
		},
	}

	cmd.Flags().StringArrayVar(&rawFilters, "filter", nil, "Keep hwms whose field matches a pattern, as field=pattern (repeatable)")
	return cmd
}

func (cli *CLI) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <qualified-name>",
		Short: "Show one hwm",
		Long:  "Show the hwm stored under a qualified name such as id#shop.orders#loader@etl-host.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.withStore("get hwm", func(s store.Store) error {
				h, err := s.Get(args[0])
				if err != nil {
					return err
				}
				return cli.render([]hwm.HWM{h})
			})
		},
	}
}

// newSetCommand builds set-int, set-date and set-datetime. The hwm is loaded
// from the store when it exists, so its modification time only changes with its value.
func newSetCommand[T hwm.ColumnValue](
	cli *CLI,
	use string,
	kind hwm.Kind,
	build func(types.Column, types.Table, ...hwm.Option) (hwm.ColumnHWM[T], error),
) *cobra.Command {
	var column, source, value string

	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Set the value of a %s hwm", kind),
		Long: fmt.Sprintf(`Set the value of a %s hwm, creating it when missing.

--column accepts a partition: "day|region=eu". --source is "db.table" or
"db.table@instance". --value "null" resets the hwm.`, kind),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			operation := "set " + string(kind) + " hwm"

			c, err := types.ParseColumn(column)
			if err != nil {
				return NewValidationError(operation, "column", column, err)
			}
			t, err := types.ParseTable(source)
			if err != nil {
				return NewValidationError(operation, "source", source, err, `Use "db.table" or "db.table@instance"`)
			}

			return cli.withStore(operation, func(s store.Store) error {
				h, err := build(c, t)
				if err != nil {
					return err
				}

				existing, err := s.Get(h.QualifiedName())
				switch {
				case err == nil:
					typed, ok := existing.(hwm.ColumnHWM[T])
					if !ok {
						return NewTypeError(operation, h.QualifiedName(), existing, kind)
					}
					h = typed
				case !errors.Is(err, store.ErrNotFound):
					return err
				}

				if strings.EqualFold(strings.TrimSpace(value), "null") {
					h, err = build(c, t)
				} else {
					h, err = h.WithValue(value)
				}
				if err != nil {
					return NewValidationError(operation, "value", value, err)
				}

				if err := s.Save(h); err != nil {
					return err
				}
				cli.logger.Info("hwm saved", "qualified_name", h.QualifiedName(), "value", h.SerializeValue())
				return cli.render([]hwm.HWM{h})
			})
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Column name, with an optional partition (required)")
	cmd.Flags().StringVar(&source, "source", "", "Source table as db.table[@instance] (required)")
	cmd.Flags().StringVar(&value, "value", "", "New value (required)")
	for _, name := range []string{"column", "source", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

package main

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/hwmstore/hwm"
	"github.com/arthur-debert/hwmstore/hwm/store"
	"github.com/arthur-debert/hwmstore/incremental"
)

var placeholders = map[string]squirrel.PlaceholderFormat{
	"question": squirrel.Question,
	"dollar":   squirrel.Dollar,
	"colon":    squirrel.Colon,
	"at":       squirrel.AtP,
}

func (cli *CLI) sqlCommand() *cobra.Command {
	var (
		columns     []string
		selectMax   bool
		placeholder string
	)

	cmd := &cobra.Command{
		Use:   "sql <qualified-name>",
		Short: "Print the query reading the rows past a column hwm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const operation = "build query"

			format, ok := placeholders[placeholder]
			if !ok {
				return NewValidationError(operation, "placeholder", placeholder, nil, "Use question, dollar, colon or at")
			}
			opts := []incremental.Option{incremental.WithPlaceholders(format)}

			return cli.withStore(operation, func(s store.Store) error {
				h, err := s.Get(args[0])
				if err != nil {
					return err
				}

				var (
					query     string
					queryArgs []any
				)
				switch x := h.(type) {
				case hwm.IntHWM:
					query, queryArgs, err = windowSQL(x, columns, selectMax, opts)
				case hwm.DateHWM:
					query, queryArgs, err = windowSQL(x, columns, selectMax, opts)
				case hwm.DateTimeHWM:
					query, queryArgs, err = windowSQL(x, columns, selectMax, opts)
				default:
					kind, _ := hwm.KeyFor(h)
					return NewValidationError(operation, "hwm type", string(kind), hwm.ErrIncomparable, "Only column hwms select rows")
				}
				if err != nil {
					return err
				}

				fmt.Fprintln(cli.out, query)
				for i, arg := range queryArgs {
					fmt.Fprintf(cli.out, "-- $%d = %v\n", i+1, arg)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Selected columns, defaults to *")
	cmd.Flags().BoolVar(&selectMax, "max", false, "Select the greatest column value instead of the rows")
	cmd.Flags().StringVar(&placeholder, "placeholder", "question", "Bind parameter style (question|dollar|colon|at)")
	return cmd
}

func windowSQL[T hwm.ColumnValue](h hwm.ColumnHWM[T], columns []string, selectMax bool, opts []incremental.Option) (string, []any, error) {
	if selectMax {
		return incremental.MaxQuery(h, opts...).ToSql()
	}
	return incremental.Window(h, columns, opts...).ToSql()
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniacca/pokelab/internal/typechart"
)

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <attacking> <defending>...",
		Short: "Classify defending types against an attacking type",
		Example: `  pokelab classify electric water flying ground
  pokelab classify fire grass`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			attacking, ok := typechart.ParseType(args[0])
			if !ok {
				a.logger.Debugf("unknown attacking type: %s", args[0])
			}
			defending := make([]typechart.Type, 0, len(args)-1)
			for _, arg := range args[1:] {
				t, ok := typechart.ParseType(arg)
				if !ok {
					a.logger.Debugf("unknown defending type: %s", arg)
				}
				defending = append(defending, t)
			}

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			res := ds.Chart.Classify(attacking, defending...)
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printClassification(cmd.OutOrStdout(), attacking, res)
			return nil
		},
	}
}

func printClassification(w io.Writer, attacking typechart.Type, res typechart.Result) {
	if res.Empty() {
		fmt.Fprintf(w, "%s has a neutral effect on every defending type\n", attacking)
		return
	}
	group := func(label string, types []typechart.Type) {
		if len(types) == 0 {
			return
		}
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		fmt.Fprintf(w, "%-20s %s\n", label+":", strings.Join(names, ", "))
	}
	group("super effective", res.SuperEffective)
	group("not very effective", res.NotVeryEffective)
	group("no effect", res.NoEffect)
}

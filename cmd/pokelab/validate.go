package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daniacca/pokelab/internal/catalog"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a dataset file against the schema and semantic rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := catalog.LoadDatasetFile(args[0], a.logger)
			if err != nil {
				var verr *catalog.ValidationError
				if errors.As(err, &verr) {
					for _, issue := range verr.Issues {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", issue)
					}
					return fmt.Errorf("%s: %d validation issue(s)", args[0], len(verr.Issues))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s %s, %d chains)\n", args[0], ds.Name, ds.Version, ds.Dex.Len())
			return nil
		},
	}
}

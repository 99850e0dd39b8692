package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/evolution"
)

func parseSpeciesArg(arg string) (evolution.SpeciesID, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid species id %q: must be a positive integer", arg)
	}
	return evolution.SpeciesID(n), nil
}

func speciesLabel(ds *catalog.Dataset, id evolution.SpeciesID) string {
	if name, ok := ds.SpeciesName(id); ok {
		return fmt.Sprintf("%s (#%d)", name, id)
	}
	return fmt.Sprintf("#%d", id)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) evolveCmd() *cobra.Command {
	var (
		ctx       evolution.Context
		timeOfDay string
	)
	cmd := &cobra.Command{
		Use:   "evolve <species>",
		Short: "Attempt to evolve a species under a trainer context",
		Example: `  pokelab evolve 25 --held-item "Thunder Stone"
  pokelab evolve 133 --friendship 220 --time night`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, err := parseSpeciesArg(args[0])
			if err != nil {
				return err
			}
			if timeOfDay != "" && !evolution.TimeOfDay(timeOfDay).Valid() {
				return fmt.Errorf("invalid --time %q: must be day or night", timeOfDay)
			}
			ctx.TimeOfDay = evolution.TimeOfDay(timeOfDay)

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			out := ds.Dex.Evolve(species, ctx, ds)
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&ctx.Level, "level", 1, "current level")
	cmd.Flags().IntVar(&ctx.Friendship, "friendship", 0, "current friendship")
	cmd.Flags().StringVar(&ctx.HeldItem, "held-item", "", "item or stone being used")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "time of day: day or night")
	cmd.Flags().StringVar(&ctx.Location, "location", "", "current location")
	cmd.Flags().BoolVar(&ctx.Trading, "trade", false, "the Pokémon is being traded")
	return cmd
}

func (a *app) optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options <species>",
		Short: "List the evolutions a species can take and what each needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, err := parseSpeciesArg(args[0])
			if err != nil {
				return err
			}
			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			transitions := ds.Dex.PossibleEvolutions(species)
			if a.asJSON {
				out := make([]catalog.TransitionConfig, 0, len(transitions))
				for _, t := range transitions {
					out = append(out, catalog.TransitionConfig{
						Species:     int(t.Target),
						Requirement: catalog.RequirementToConfig(t.Requirement),
					})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			if len(transitions) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s does not evolve\n", speciesLabel(ds, species))
				return nil
			}
			for _, t := range transitions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", speciesLabel(ds, t.Target), evolution.Describe(t.Requirement))
			}
			return nil
		},
	}
}

func (a *app) progressCmd() *cobra.Command {
	var level, friendship int
	cmd := &cobra.Command{
		Use:   "progress <species>",
		Short: "Show how close a species is to its first evolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, err := parseSpeciesArg(args[0])
			if err != nil {
				return err
			}
			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			p := ds.Dex.Progress(species, level, friendship)
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"species": species, "progress": p})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f%%\n", speciesLabel(ds, species), p)
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "current level")
	cmd.Flags().IntVar(&friendship, "friendship", 0, "current friendship")
	return cmd
}

func (a *app) lineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "line <species>",
		Short: "Show the evolution family of a species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			species, err := parseSpeciesArg(args[0])
			if err != nil {
				return err
			}
			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			line := ds.Dex.EvolutionLine(species)
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), line)
			}
			labels := make([]string, 0, len(line))
			for _, id := range line {
				labels = append(labels, speciesLabel(ds, id))
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, " -> "))
			return nil
		},
	}
}

func (a *app) stoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stone [name]",
		Short: "List species that evolve with a stone, or the known stones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if a.asJSON {
					return printJSON(cmd.OutOrStdout(), evolution.Stones)
				}
				for _, s := range evolution.Stones {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			}
			ds, err := a.loadDataset()
			if err != nil {
				return err
			}
			ids := ds.Dex.SpeciesByStone(args[0])
			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), speciesLabel(ds, id))
			}
			return nil
		},
	}
}

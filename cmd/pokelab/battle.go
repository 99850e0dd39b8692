package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daniacca/pokelab/internal/battle"
)

// parseCombatant reads "name:hp:attack:defense:speed".
func parseCombatant(s string) (battle.Combatant, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 5 {
		return battle.Combatant{}, fmt.Errorf("invalid combatant %q: expected name:hp:attack:defense:speed", s)
	}
	stats := make([]int, 4)
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return battle.Combatant{}, fmt.Errorf("invalid combatant %q: %w", s, err)
		}
		stats[i] = n
	}
	return battle.Combatant{
		Name:    strings.TrimSpace(parts[0]),
		HP:      stats[0],
		Attack:  stats[1],
		Defense: stats[2],
		Speed:   stats[3],
	}, nil
}

func (a *app) battleCmd() *cobra.Command {
	var (
		first, second string
		seed          int64
		maxSteps      int
	)
	cmd := &cobra.Command{
		Use:     "battle",
		Short:   "Simulate a battle between two combatants",
		Example: `  pokelab battle --a pikachu:35:55:40:90 --b bulbasaur:45:49:49:45 --seed 7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ca, err := parseCombatant(first)
			if err != nil {
				return err
			}
			cb, err := parseCombatant(second)
			if err != nil {
				return err
			}

			var random func() float64
			if cmd.Flags().Changed("seed") {
				random = rand.New(rand.NewSource(seed)).Float64
			}
			b, err := battle.New(ca, cb, random)
			if err != nil {
				return err
			}
			state := b.RunToEnd(maxSteps)
			a.logger.Debugf("battle finished: rounds=%d winner=%s draw=%t", state.Round, state.Winner, state.Draw)

			if a.asJSON {
				return printJSON(cmd.OutOrStdout(), state)
			}
			for _, line := range state.Log {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "a", "", "first combatant as name:hp:attack:defense:speed")
	cmd.Flags().StringVar(&second, "b", "", "second combatant as name:hp:attack:defense:speed")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for a reproducible battle")
	cmd.Flags().IntVar(&maxSteps, "max-steps", battle.DefaultMaxSteps, "attacks before the battle is declared a draw")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}

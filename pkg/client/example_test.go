package client_test

import (
	"context"
	"fmt"
	"log"

	"github.com/daniacca/pokelab/internal/catalog"
	"github.com/daniacca/pokelab/internal/evolution"
	"github.com/daniacca/pokelab/pkg/client"
)

func ExampleDatasetBuilder() {
	dataset := client.NewDataset("kanto-starters").
		Version("1.0").
		Species(1, "Bulbasaur", "grass", "poison").
		Species(2, "Ivysaur", "grass", "poison").
		Species(3, "Venusaur", "grass", "poison").
		Chain(client.NewChain(1).EvolvesTo(2, client.AtLevel(16))).
		Chain(client.NewChain(2).EvolvesTo(3, client.AtLevel(32))).
		Chain(client.NewChain(3))

	ds, err := catalog.BuildDataset(dataset.Build(), nil)
	if err != nil {
		log.Fatal(err)
	}
	out := ds.Dex.Evolve(1, evolution.Context{Level: 16}, ds)
	fmt.Println(out.Message)
	fmt.Println(ds.Dex.Progress(2, 16, 0))
	// Output:
	// Evolved into Ivysaur!
	// 50
}

func ExampleClient() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	// This would query a running server.
	// Uncomment to actually send:
	// res, err := c.NextEvolution(ctx, "default", 25, evolution.Context{Level: 5, HeldItem: "Thunder Stone"})
	// if err != nil {
	// 	log.Fatal(err)
	// }
	// fmt.Println(res.Outcome.Message)
	_ = ctx
	_ = c
}

// Command demo prints the EdgeQL compiled from the queries registered
// in queries.go and, with -run, executes them against the instance
// resolved from the environment or linked project.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"

	"github.com/gelq/gelq/cli"
	"github.com/gelq/gelq/client"
	"github.com/gelq/gelq/dsn"
	"github.com/gelq/gelq/edgeql"
	"github.com/gelq/gelq/edgeql/compile"
)

// demoArgs supplies values for the parametrized queries when -run is
// given.
var demoArgs = map[string]map[string]any{
	"MovieListing": {"limit": 10},
	"MoviesAfter":  {"min_year": 1990},
	"AddPerson":    {"name": "Jodie Foster"},
}

func main() {
	run := flag.Bool("run", false, "execute the queries against the connected instance")
	mutate := flag.Bool("mutate", false, "include queries that write")
	flag.Parse()

	var c *client.Client
	if *run {
		conn, err := dsn.Resolve(dsn.Options{})
		if err != nil {
			cli.FatalErr("resolve connection", err)
		}
		c, err = client.New(client.Config{DSN: conn})
		if err != nil {
			cli.FatalErr("connect", err)
		}
	}

	for _, name := range edgeql.Registered() {
		e, _ := edgeql.Lookup(name)
		q, err := compile.Compile(e)
		if err != nil {
			cli.FatalErr("compile "+name, err)
		}
		color.New(color.Bold).Printf("-- %s (%s)\n", name, q.Cardinality)
		for _, p := range q.Params {
			opt := ""
			if p.Optional {
				opt = " (optional)"
			}
			fmt.Printf("--   $%s: %s%s\n", p.Name, p.Type, opt)
		}
		fmt.Println(q.Text)
		fmt.Println()

		if c == nil {
			continue
		}
		if name == "AddPerson" && !*mutate {
			continue
		}
		rows, err := c.Query(context.Background(), q, demoArgs[name])
		if err != nil {
			cli.FatalErr("run "+name, err)
		}
		for _, row := range rows {
			fmt.Printf("   %s\n", row)
		}
		fmt.Println()
	}
}

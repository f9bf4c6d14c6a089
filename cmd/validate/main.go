// Command validate checks a fuzzy rule-configuration document without
// starting the service. It prints the variables and rules that were loaded,
// or the configuration error that rejected the document.
//
// Usage:
//
//	go run ./cmd/validate -rules config/rules.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/landigf/MinervaS/internal/fuzzy"
)

func main() {
	rulesPath := flag.String("rules", "", "path to the rule-configuration YAML document")
	flag.Parse()

	if *rulesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*rulesPath); err != nil {
		fmt.Fprintln(os.Stderr, "invalid:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	engine, err := fuzzy.LoadFile(path)
	if err != nil {
		return err
	}

	reg := engine.Registry()
	out := reg.Output()
	fmt.Printf("ok: output variable %q with %d terms over [%g, %g]\n",
		out.Name, len(out.Terms), out.Universe[0], out.Universe[len(out.Universe)-1])
	return nil
}

// Command simulate sweeps the speed-advisory engine over a grid of traffic
// and weather risk values and prints the inferred speed factors, holding
// the remaining inputs fixed. Useful for inspecting the inference surface
// after editing a rule set.
//
// Usage:
//
//	go run ./cmd/simulate
//	go run ./cmd/simulate -rules config/rules.yaml -fatigue 0.3 -steps 11
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/landigf/MinervaS/internal/fuzzy"
	"github.com/landigf/MinervaS/internal/risk"
)

func main() {
	rulesPath := flag.String("rules", "", "rule-configuration YAML (default: embedded rule set)")
	fatigue := flag.Float64("fatigue", 0, "fixed driver fatigue in [0,1]")
	deadline := flag.Float64("deadline", 0, "fixed deadline pressure in [0,1]")
	temp := flag.Float64("temp", 15, "fixed ambient temperature in °C")
	steps := flag.Int("steps", 11, "grid resolution per axis")
	flag.Parse()

	if err := run(*rulesPath, *fatigue, *deadline, *temp, *steps); err != nil {
		log.Fatal(err)
	}
}

func run(rulesPath string, fatigue, deadline, temp float64, steps int) error {
	var (
		engine *fuzzy.Engine
		err    error
	)
	if rulesPath == "" {
		engine, err = risk.NewEngine()
	} else {
		engine, err = fuzzy.LoadFile(rulesPath)
	}
	if err != nil {
		return err
	}

	fmt.Printf("speed factor surface (fatigue=%.2f deadline=%.2f temp=%.1f°C)\n", fatigue, deadline, temp)
	fmt.Print("traffic\\weather")
	for j := 0; j < steps; j++ {
		fmt.Printf("  %5.2f", axis(j, steps))
	}
	fmt.Println()

	for i := 0; i < steps; i++ {
		traffic := axis(i, steps)
		fmt.Printf("%14.2f ", traffic)
		for j := 0; j < steps; j++ {
			factor, err := engine.Evaluate(map[string]float64{
				risk.VarTraffic:  traffic,
				risk.VarWeather:  axis(j, steps),
				risk.VarFatigue:  fatigue,
				risk.VarDeadline: deadline,
				risk.VarTemp:     temp,
			})
			if err != nil {
				return err
			}
			fmt.Printf("  %5.2f", factor)
		}
		fmt.Println()
	}
	return nil
}

// axis maps a grid index to [0,1].
func axis(i, steps int) float64 {
	if steps <= 1 {
		return 0
	}
	return float64(i) / float64(steps-1)
}

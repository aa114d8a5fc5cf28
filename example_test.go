// SPDX-License-Identifier: MIT

package unfold_test

import (
	"fmt"

	"github.com/solverlab/unfold"
)

// ExampleListMethods enumerates the identifier catalog.
func ExampleListMethods() {
	for _, id := range unfold.ListMethods()[:7] {
		fmt.Println(id)
	}
	// Output:
	// RI
	// JA
	// GS
	// SOR
	// AOR
	// ChebySOR
	// ChebyAOR
}

// ExampleParse shows the identifier-to-method mapping.
func ExampleParse() {
	m, isNet, _ := unfold.Parse("SORNet")
	fmt.Println(m, isNet)

	_, _, err := unfold.Parse("simplex")
	fmt.Println(err != nil)
	// Output:
	// SOR true
	// true
}

// ExampleRun benchmarks a classical method against its trained unfolding.
func ExampleRun() {
	cfg := unfold.DefaultConfig()
	cfg.N = 5
	cfg.T = 4
	cfg.Epochs = 2
	cfg.BatchSize = 2
	cfg.HoldoutSize = 2
	cfg.Seed = 7

	report, err := unfold.Run([]string{"SOR", "SORNet"}, cfg)
	if err != nil {
		fmt.Println("run failed:", err)
		return
	}
	for _, res := range report.Results {
		fmt.Println(res.ID, res.Convergent, res.Diverged, res.Params != nil)
	}
	// Output:
	// SOR true false false
	// SORNet true false true
}

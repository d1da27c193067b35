// Command bngsolve is a demo harness for the BNG allocation engine: it
// loads a JSON fixture of reference tables/demand/context, runs a solve,
// and prints the resulting allocation. It is a collaborator-style tool,
// not a spec component — the engine itself owns no CLI (spec.md §6).
package main

import "github.com/aristath/bngoptimiser/cmd/bngsolve/cmd"

func main() {
	cmd.Execute()
}

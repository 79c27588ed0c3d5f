// Package main is the entry point for the cricmetrics CLI tool, which stores
// T20 match histories and replays them into leakage-free per-match feature
// vectors for a downstream win-probability classifier.
package main

import "github.com/pable/go-cricket-metrics/cmd"

func main() {
	cmd.Execute()
}

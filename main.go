// Package main is the entry point for the matchstats CLI, which loads football
// match records from configured pages and prints filtered aggregate tables.
package main

import "github.com/pable/go-match-stats/cmd"

func main() {
	cmd.Execute()
}

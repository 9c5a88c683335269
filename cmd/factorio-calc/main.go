package main

import "github.com/andrescamacho/factorio-calculator/internal/adapters/cli"

func main() {
	cli.Execute()
}

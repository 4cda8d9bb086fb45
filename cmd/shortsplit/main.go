package main

import "github.com/forPelevin/shortsplit/internal/cli"

func main() {
	cli.Main()
}

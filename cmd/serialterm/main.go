package main

import "serialterm/internal/cli"

func main() {
	cli.Execute()
}

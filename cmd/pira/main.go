package main

import "pira/internal/cli"

func main() {
	cli.Execute()
}

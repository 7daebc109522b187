package main

import "github.com/dialspace/dialspace/internal/cli"

func main() {
	cli.Execute()
}

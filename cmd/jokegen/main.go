package main

import "jokegen/internal/cli"

func main() {
	cli.Execute()
}

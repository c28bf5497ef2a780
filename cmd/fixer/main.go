package main

import "github.com/vietddude/fixer/internal/cli"

func main() {
	cli.Execute()
}

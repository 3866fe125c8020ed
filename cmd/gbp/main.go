package main

import "github.com/ourdigital/gbp-toolkit/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/mcoot/teamladder/internal/cli"

func main() {
	cli.Execute()
}

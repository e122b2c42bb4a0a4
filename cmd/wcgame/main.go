package main

import "github.com/mcoot/wordcascade/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/dolthub/release-notes-generator/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/DrSkyle/routeviz/cmd/routeviz/commands"

func main() {
	commands.Execute()
}

// Agenda is the command-line client for the agenda store.
package main

import "github.com/mesh-intelligence/agenda/internal/cli"

func main() {
	cli.Main()
}

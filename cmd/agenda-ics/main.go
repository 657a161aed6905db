package main

import "github.com/pfrederiksen/agenda-ics/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/cmd/server/cmd"

func main() {
	cmd.Execute()
}

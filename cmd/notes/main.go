package main

import "noteminder/cmd/notes/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/jfmyers9/albumgrid/cmd"

func main() {
	cmd.Execute()
}

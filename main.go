package main

import "github.com/aouyang1/immichslideshow/cmd"

func main() {
	cmd.Execute()
}

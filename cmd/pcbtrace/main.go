package main

import "github.com/OpenTraceLab/OpenTracePCB/cmd/pcbtrace/cmd"

func main() {
	cmd.Execute()
}

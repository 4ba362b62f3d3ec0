package main

import "github.com/rkirkendall/nano-canvas/internal/cmd"

func main() {
	cmd.Execute()
}

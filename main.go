package main

import "github.com/notargets/brickfem/cmd"

func main() {
	cmd.Execute()
}

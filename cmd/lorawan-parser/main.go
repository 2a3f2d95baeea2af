package main

import "github.com/tanupoo/lorawan-parser/cmd/lorawan-parser/cmd"

var version string // set by the compiler

func main() {
	cmd.Execute(version)
}

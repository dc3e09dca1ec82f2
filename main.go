package main

import "github.com/kvshift/kvshift/cmd"

func main() {
	cmd.Execute()
}

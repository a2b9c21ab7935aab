package main

import "github.com/roessland/nikeplus/cmd"

func main() {
	cmd.Execute()
}

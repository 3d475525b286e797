package main

import "ftn/cmd"

func main() {
	cmd.Execute()
}

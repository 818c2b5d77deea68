package main

import "github.com/iksnae/cc-fi/cmd"

func main() {
	cmd.Execute()
}

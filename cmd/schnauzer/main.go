package main

import "github.com/Arsynth/schnauzer/cmd/schnauzer/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/cliptray/cliptray/cmd"

func main() {
	cmd.Execute()
}

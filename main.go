package main

import "github.com/convlint/convlint/cmd"

func main() {
	cmd.Execute()
}

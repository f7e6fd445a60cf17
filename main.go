package main

import "github.com/warungops/warungops/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Nic0w/zbars/cmd/zbars/cmd"

func main() {
	cmd.Execute()
}

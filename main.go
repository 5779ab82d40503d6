package main

import "github.com/stashbroker/broker/cmd"

func main() {
	cmd.Execute()
}

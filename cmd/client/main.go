package main

import "marketplace/cmd/client/cmd"

func main() {
	cmd.Execute()
}

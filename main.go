package main

import "asset-registry/cmd"

func main() {
	cmd.Execute()
}

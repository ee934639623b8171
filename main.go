package main

import "asset-binder/cmd"

func main() {
	cmd.Execute()
}

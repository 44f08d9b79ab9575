package main

import "log-filter/cmd"

func main() {
	cmd.Execute()
}

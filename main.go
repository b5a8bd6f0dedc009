package main

import "revenuecast/cmd"

func main() {
	cmd.Execute()
}

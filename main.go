package main

import "videoxt/cmd"

func main() {
	cmd.Execute()
}

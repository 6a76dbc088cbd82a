package main

import "albumbot/cmd"

func main() {
	cmd.Execute()
}

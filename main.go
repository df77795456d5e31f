package main

import "inmofeed/cmd"

func main() {
	cmd.Execute()
}

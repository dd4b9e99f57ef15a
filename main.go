package main

import "quickmenu/cmd"

func main() {
	cmd.Execute()
}

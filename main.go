package main

import "tacly.com/taskboard/cmd"

func main() {
	cmd.Execute()
}

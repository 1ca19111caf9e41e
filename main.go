package main

import "rdrupload/cmd"

func main() {
	cmd.Execute()
}

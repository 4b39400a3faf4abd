package main

import "github.com/hurou927/db-tree/cmd"

func main() {
	cmd.Execute()
}

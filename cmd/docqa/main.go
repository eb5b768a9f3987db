package main

import "docqa/internal/cli"

func main() {
	cli.Execute()
}

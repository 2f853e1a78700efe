package main

import "gemcook/internal/cli"

func main() {
	cli.Execute()
}

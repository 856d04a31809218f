package main

import "carewatch/internal/cli"

func main() {
	cli.Execute()
}

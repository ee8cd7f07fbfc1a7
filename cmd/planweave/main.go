package main

import "github.com/vk/planweave/internal/cli"

func main() {
	cli.Execute()
}

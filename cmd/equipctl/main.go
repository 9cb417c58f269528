package main

import "equip-go/internal/cli"

func main() {
	cli.Execute()
}

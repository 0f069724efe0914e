package main

import "github.com/okian/pediscore/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/okian/pediscore/internal/loadgen"

func main() {
	loadgen.Execute()
}

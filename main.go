package main

import (
	cmd "github.com/rohmanhakim/richtext-converter/internal/cli"
)

func main() {
	cmd.Execute()
}

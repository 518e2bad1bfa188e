package main

import (
	"github.com/guacops/go-guacamole/internal/cli"
)

func main() {
	cli.Execute()
}

package main

import (
	"github.com/funvibe/mop/internal/builtins"
	"github.com/funvibe/mop/internal/ext"
	"github.com/funvibe/mop/pkg/cli"
)

func init() {
	ext.RegisterHelpers(builtins.TextModule, builtins.TextHelpers())
}

func main() {
	cli.Main()
}

//go:build cli
// +build cli

package main

import (
	_ "propshop.GO/custom"

	"propshop.GO/cmd"
	"propshop.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}

// Package main is the entry point of the skewcache command.
package main

import "github.com/sarchlab/skewcache/skewcache/cmd"

func main() {
	cmd.Execute()
}

// Package main provides the wingman command line.
package main

func main() {
	Execute()
}

package main

import "github.com/siftlabs/sift/internal/cli"

func main() {
	cli.Execute()
}

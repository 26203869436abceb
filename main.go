package main

import "github.com/theirongolddev/aurion/cmd"

func main() {
	cmd.Execute()
}

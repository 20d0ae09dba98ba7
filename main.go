package main

import "github.com/AvaProtocol/avax-workflow/cmd"

func main() {
	cmd.Execute()
}

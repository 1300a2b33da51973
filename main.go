package main

import "github.com/Scalingo/github-profile-mcp/cmd"

func main() {
	cmd.Execute()
}

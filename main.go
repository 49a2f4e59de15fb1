package main

import (
	cmd "github.com/kstonekuan/splatter-mcp-app/cmd/sharp"
)

func main() {
	cmd.Execute()
}

package main

import "github.com/LegacyCodeHQ/includeparser/cmd"

func main() {
	cmd.Execute()
}

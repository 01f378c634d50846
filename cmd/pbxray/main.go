package main

import "github.com/pbxtools/pbxray/internal/cmd"

func main() {
	cmd.Execute()
}

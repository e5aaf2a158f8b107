package main

import "github.com/KaramelBytes/mlstart-cli/cmd"

func main() {
	cmd.Execute()
}

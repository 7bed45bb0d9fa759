package main

import "github.com/iksnae/llm-studio/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/chiasentiment/Samsonsblog/cmd"

func main() {
	cmd.Execute()
}

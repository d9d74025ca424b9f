package main

import "github.com/resonix-audio/audioengine/cmd"

func main() {
	cmd.Execute()
}

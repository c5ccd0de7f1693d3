package main

import "github.com/kiesman99/pano360/cmd"

func main() {
	cmd.Execute()
}

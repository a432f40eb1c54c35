package main

import "github.com/jsphweid/hlayout/cmd"

func main() {
	cmd.Execute()
}

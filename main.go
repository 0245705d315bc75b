package main

import "github.com/harmonia-mir/harmonia/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/bob-takuya/notionsync/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/qrave1/RoomBook/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Alijeyrad/studio_backend/cmd"

func main() {
	cmd.Execute()
}

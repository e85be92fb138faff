package main

import "github.com/Naman-Goel-iitm/Device-connectivity/cmd"

func main() {
	cmd.Execute()
}

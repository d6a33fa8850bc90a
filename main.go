package main

import "pillpal-backend/cmd"

func main() {
	cmd.Run()
}

package main

import "github.com/packerlschupfer/ESP32-Logger/internal/cmd"

func main() {
	cmd.Execute()
}

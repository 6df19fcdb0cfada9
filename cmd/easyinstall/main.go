package main

import "easyinstall/internal/easyinstall"

func main() {
	easyinstall.Main()
}

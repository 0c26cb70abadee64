package main

import "github.com/nguyentranbao-ct/catalog-browser/cmd"

func main() {
	cmd.Execute()
}

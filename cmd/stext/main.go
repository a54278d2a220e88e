package main

import "github.com/goplus/stext/cmd/stext/internal"

func main() {
	internal.Execute()
}

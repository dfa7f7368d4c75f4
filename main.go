package main

import "github.com/quill-social/quill/internal/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/nnimab/Smart-vocabulary-book/cmd"

func main() {
	cmd.Execute()
}

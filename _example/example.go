// _example/example.go
package main

import (
	"fmt"

	"github.com/xo/textsync"
)

const (
	text1 = "Lorem ipsum dolor."
	text2 = "Lorem dolor sit amet."
)

func main() {
	e := textsync.New()
	edits := e.Diff(text1, text2, false)
	fmt.Println(e.PrettyText(edits))
}

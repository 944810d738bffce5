package main

import (
	"fmt"
	"github.com/freecodecampba/wikibot/cmd"
	"os"
)

func main() {
	app := cmd.New()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

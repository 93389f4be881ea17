package main

import (
	"log"
	"os"

	cli "gitlab.com/revstore/revd/internal/cli/revd"
)

func main() {
	if err := cli.NewApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// Command mfs is an interactive shell over a single flat disk image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mit-pdos/go-mfs/mfs"
	"github.com/mit-pdos/go-mfs/util"
)

func main() {
	debug := flag.Uint64("debug", 0, "debug trace level (0 is silent)")
	image := flag.String("image", "", "image to open at start-up")
	flag.Parse()
	util.Debug = *debug

	s := mfs.NewSession()
	if *image != "" {
		err := s.Mount(*image)
		if err != nil {
			fmt.Println("open error: " + err.Error())
		}
	}
	run(s, os.Stdin, os.Stdout)
}

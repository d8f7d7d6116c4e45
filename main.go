package main

import (
	"fmt"
	"log"
	"os"
)

const usage = `Usage: o2report <command> [flags]

Commands:
  clean   parse raw sensor logs, normalise them and write cleaned CSV files
  fit     run regression fits over cleaned series and export the results
  plot    render a fit chart for a single cleaned series

Run "o2report <command> -h" for the flags of each command.`

func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("o2report: ")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "clean":
		err = runClean(os.Args[2:])
	case "fit":
		err = runFit(os.Args[2:])
	case "plot":
		err = runPlot(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

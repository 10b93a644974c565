package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "simulate":
		runSimulate(ctx, os.Args[2:])
	case "synthesize":
		runSynthesize(ctx, os.Args[2:])
	case "runsynth":
		runRunSynth(ctx, os.Args[2:])
	case "checksynth":
		runCheckSynth(ctx, os.Args[2:])
	case "buildreport":
		runBuildReport(ctx, os.Args[2:])
	case "fwpacker":
		runFwPacker(ctx, os.Args[2:])
	case "archive":
		runArchive(ctx, os.Args[2:])
	case "compile-simlib":
		runCompileSimlib(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ugt-fwtools - uGT firmware build, simulation and packaging tools

Usage:
  ugt-fwtools <command> [options]

Commands:
  simulate        Simulate a trigger menu against a test vector (QuestaSim)
  synthesize      Set up a build area and start module synthesis (Vivado)
  runsynth        Re-run the synthesis of a single module in the foreground
  checksynth      Check bitfiles, logs and timing of a finished build
  buildreport     Render the final build report of a finished build
  fwpacker        Pack a verified build into a firmware bundle
  archive         Archive the Vivado projects of a build
  compile-simlib  Compile the QuestaSim simulation libraries

Use "ugt-fwtools <command> --help" for more information about a command.`)
}

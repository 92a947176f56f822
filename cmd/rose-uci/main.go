// Command rose-uci runs the engine as a UCI process communicating
// over stdin/stdout, grounded on
// hailam-chessplay/cmd/chessplay-uci/main.go's flag handling and
// auto-load-NNUE-from-default-locations behavior.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/kestrelchess/rosecore/internal/uciproto"
)

const defaultNetFile = "rosecore.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("[uci] cpu profiling enabled, writing to %s", profilePath)
	}

	h := uciproto.New(os.Stdout)
	if path := findDefaultNet(); path != "" {
		if err := h.LoadNetwork(path); err != nil {
			log.Printf("[uci] failed to load %s: %v (using random-weight evaluator)", path, err)
		} else {
			log.Printf("[uci] loaded network from %s", path)
		}
	}

	h.Run(os.Stdin)
}

// findDefaultNet looks for the default network file in the same
// locations the teacher's autoLoadNNUE checks, returning "" if none
// is found (the handler then falls back to its random-weight net).
func findDefaultNet() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	for _, dir := range []string{
		filepath.Join(home, ".rosecore", "nnue"),
		"./nnue",
		".",
	} {
		p := filepath.Join(dir, defaultNetFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

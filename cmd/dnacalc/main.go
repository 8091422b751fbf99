// dnacalc derives entity DNA values offline, without a running server.
//
// Usage:
//
//	go run ./cmd/dnacalc [-digits n] [name ...]
//
// Names are taken from arguments, or from stdin (one per line) when no
// arguments are given. Output: one "name<TAB>dna" line per input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/menagerie/server/internal/registry"
)

func main() {
	digits := flag.Int("digits", registry.DefaultDigits, "attribute digit count (1-18)")
	flag.Parse()

	reg, err := registry.New(*digits, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnacalc: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		for _, name := range flag.Args() {
			fmt.Printf("%s\t%d\n", name, reg.DeriveAttribute(name))
		}
		return
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		name := sc.Text()
		fmt.Printf("%s\t%d\n", name, reg.DeriveAttribute(name))
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "dnacalc: read stdin: %v\n", err)
		os.Exit(1)
	}
}

// Command genrtp builds a Gromacs residue template (rtp) and hydrogen database
// (hdb) from a mol2 structure and its topology. See genrtp --help.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

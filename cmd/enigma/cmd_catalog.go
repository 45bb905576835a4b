package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"enigma/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in rotors, reflectors and entry wheels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintln(w, "KIND\tNAME\tWIRING\tNOTCHES")
			for _, r := range catalog.Rotors() {
				fmt.Fprintf(w, "rotor\t%s\t%s\t%s\n", r.Name, r.Wiring, r.Notches)
			}
			for _, r := range catalog.Reflectors() {
				fmt.Fprintf(w, "reflector\t%s\t%s\t\n", r.Name, r.Wiring)
			}
			for _, e := range catalog.EntryWheels() {
				fmt.Fprintf(w, "entry\t%s\t%s\t\n", e.Name, e.Wiring)
			}
			return w.Flush()
		},
	}
}

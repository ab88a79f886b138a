package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZhangRuiQian778/st-alphagenome/internal/ontology"
)

func newOntologyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ontology",
		Short: "Inspect the tissue ontology mapping",
	}
	cmd.AddCommand(newOntologyListCmd())
	return cmd
}

func newOntologyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported tissue labels and their ontology terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "TISSUE\tONTOLOGY")
			for _, label := range ontology.Labels() {
				id, err := ontology.Lookup(label)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\n", label, id)
			}
			return w.Flush()
		},
	}
}

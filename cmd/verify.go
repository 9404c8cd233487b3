// -- cmd/verify.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/crxflow-cli/internal/annotations"
)

// newVerifyCmd creates the `verify` command, which reads and updates the
// ground-truth annotation store used to label classifier output.
func newVerifyCmd() *cobra.Command {
	var (
		file    string
		set     bool
		verdict bool
		comment string
	)

	verifyCmd := &cobra.Command{
		Use:   "verify [subject] [check]",
		Short: "Looks up or records a ground-truth verdict for an extension check",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, check := args[0], args[1]
			store := annotations.NewStore(file)
			out := cmd.OutOrStdout()

			if set {
				if err := store.Put(subject, check, verdict, comment); err != nil {
					return fmt.Errorf("failed to record annotation: %w", err)
				}
				fmt.Fprintf(out, "recorded %s,%s = %t\n", subject, check, verdict)
				return nil
			}

			v, c, found, err := store.Lookup(subject, check)
			if err != nil {
				return fmt.Errorf("failed to look up annotation: %w", err)
			}
			if !found {
				fmt.Fprintf(out, "no annotation for %s,%s\n", subject, check)
				return nil
			}
			fmt.Fprintf(out, "%s,%s = %t", subject, check, v)
			if c != "" {
				fmt.Fprintf(out, " (%s)", c)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	verifyCmd.Flags().StringVar(&file, "file", "annotations.csv", "annotation store file")
	verifyCmd.Flags().BoolVar(&set, "set", false, "record a verdict instead of looking one up")
	verifyCmd.Flags().BoolVar(&verdict, "verdict", false, "verdict to record with --set")
	verifyCmd.Flags().StringVar(&comment, "comment", "", "free-text comment to record with --set")
	return verifyCmd
}

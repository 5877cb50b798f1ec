package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shawnvosburg/DeployUS/pkg/object"
	"github.com/shawnvosburg/DeployUS/pkg/repo"
)

func main() {
	root := &cobra.Command{
		Use:           "gitus",
		Short:         "Miniature content-addressed source control",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newCheckoutCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// helpOverride replaces cobra's generated usage text with the exact
// string the spec pins, for both -h/--help and an argument-count error.
func helpOverride(cmd *cobra.Command, usage string) {
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), usage)
	})
	cmd.SetUsageFunc(func(cmd *cobra.Command) error {
		fmt.Fprint(cmd.OutOrStdout(), usage)
		return nil
	})
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "init",
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			_, err = repo.Init(dir)
			return err
		},
	}
	helpOverride(cmd, "usage: gitus init\n")
	return cmd
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "add",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return repo.Open(dir).Add(args[0])
		},
	}
	helpOverride(cmd, "usage: gitus add <pathspec>\n")
	return cmd
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "commit",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			_, err = repo.Open(dir).Commit(args[0], args[1])
			return err
		},
	}
	helpOverride(cmd, "usage: gitus commit <msg> <author>\n")
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "checkout",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return repo.Open(dir).Checkout(object.Digest(args[0]))
		},
	}
	helpOverride(cmd, "usage: gitus checkout <commitID>\n")
	return cmd
}

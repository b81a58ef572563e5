package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leftmike/gcodeproc/config"
)

var listCmd = &cobra.Command{
	Use:   "processors [name...]",
	Short: "Describe the processors and their arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			names = config.Names()
		}
		md, err := processorsMarkdown(names)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), md)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func processorsMarkdown(names []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("# Processors\n")
	for _, name := range names {
		help, err := config.Help(name)
		if err != nil {
			return "", err
		}
		args, err := config.Args(name)
		if err != nil {
			return "", err
		}

		fmt.Fprintf(&sb, "\n## %s\n\n%s\n", name, help)
		if len(args) == 0 {
			continue
		}
		sb.WriteString("\n| argument | default | description |\n|---|---|---|\n")
		for _, arg := range args {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", arg.Name, arg.Default, arg.Description)
		}
	}
	return sb.String(), nil
}

// render styles markdown for a terminal; anything else gets the markdown itself.
func render(w io.Writer, md string) error {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

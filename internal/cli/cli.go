// Package cli defines the planweave command line interface.
package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vk/planweave/internal/app"
)

// New builds the root command with its subcommands attached.
func New() *cobra.Command {
	cfg := app.NewConfig()

	root := &cobra.Command{
		Use:           "planweave",
		Short:         "Declarative workflow engine",
		Long:          "planweave turns a settings file into an executable workflow graph and runs it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	root.PersistentFlags().BoolVar(&cfg.Parallelize, "parallelize", false, "run independent branches concurrently")

	root.AddCommand(newRunCmd(cfg), newGraphCmd(cfg), newOutlineCmd(cfg))
	return root
}

func newRunCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <settings-file>",
		Short: "Build and execute the workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SettingsPath = args[0]
			a := app.New(cmd.ErrOrStderr(), cfg)
			result, err := a.Run(cmd.Context())
			if err != nil {
				return err
			}
			printContents(cmd, result.Contents)
			return nil
		},
	}
}

func newGraphCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <settings-file>",
		Short: "Render the workflow graph in DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SettingsPath = args[0]
			a := app.New(cmd.ErrOrStderr(), cfg)
			dot, err := a.Graph(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dot)
			return nil
		},
	}
}

func newOutlineCmd(cfg *app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <settings-file>",
		Short: "Show the component structure derived from the settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SettingsPath = args[0]
			a := app.New(cmd.ErrOrStderr(), cfg)
			connections, err := a.Outline(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(connections))
			for name := range connections {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", name, connections[name])
			}
			return nil
		},
	}
}

func printContents(cmd *cobra.Command, contents map[string]any) {
	keys := make([]string, 0, len(contents))
	for k := range contents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", k, contents[k])
	}
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Package cmd implements the go-inject command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	demo "github.com/km-arc/go-inject/app"
	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
)

const envFileFlag = "env-file"

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// New returns the root command with all sub-commands attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go-inject [sub-command]",
		Short: "Demo application wired by the go-inject container",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSlice(envFileFlag, nil, "dotenv file(s) to load before reading the environment (default .env)")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newRouteCommand())
	cmd.AddCommand(newContainerCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /route/{path} and GET /container over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}
}

func newRouteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>...",
		Short: "Resolve the router once and print the result for every path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			if err := a.Boot(); err != nil {
				return err
			}
			router, err := container.RequestRequired[demo.IRouter](a.Container)
			if err != nil {
				return err
			}
			for _, path := range paths {
				result := router.Route(path)
				a.Logger().Debug("routed", zap.String("path", path), zap.String("result", result))
				fmt.Fprintln(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}
}

func newContainerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "container",
		Short: "List the container's registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			if err := a.Boot(); err != nil {
				return err
			}
			regs, err := demo.Registrations(a.Container)
			if err != nil {
				return err
			}
			renderRegistrations(cmd.OutOrStdout(), regs)
			return nil
		},
	}
}

func renderRegistrations(out io.Writer, regs []demo.Registration) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Capability", "Implementation", "Lifetime", "Constructors", "Resolved"})
	for _, r := range regs {
		t.AppendRow(table.Row{r.Capability, r.Implementation, r.Lifetime, r.Constructors, r.Resolved})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

// bootstrap loads the configuration and registers the demo providers.
func bootstrap(cmd *cobra.Command) (*app.Application, error) {
	envFiles, err := cmd.Flags().GetStringSlice(envFileFlag)
	if err != nil {
		return nil, err
	}
	cfg := config.Load(envFiles...)

	lifetime, err := container.ParseLifetime(cfg.App.RouterLifetime)
	if err != nil {
		return nil, fmt.Errorf("APP_ROUTER_LIFETIME: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := a.Register(&demo.Provider{RouterLifetime: lifetime}); err != nil {
		return nil, err
	}
	if err := a.Register(&demo.RouteProvider{}); err != nil {
		return nil, err
	}
	return a, nil
}

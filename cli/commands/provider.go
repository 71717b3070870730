package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cedricrupb/dataviewer/core/provider"
)

// NewProviderCommand creates the provider command
func NewProviderCommand(ctx context.Context, cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage LLM providers",
		Long:  `Show and probe the LLM providers used for viewer generation.`,
	}

	// Subcommands
	cmd.AddCommand(
		newProviderListCommand(cli),
		newProviderTestCommand(ctx, cli),
	)

	return cmd
}

// newProviderListCommand creates the provider list command
func newProviderListCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			for name, p := range cli.Config.Providers {
				status := "configured"
				if name == cli.Config.ActiveProvider {
					status = "active"
				}

				model := ""
				if m, ok := p.Config["model"].(string); ok {
					model = m
				}

				fmt.Printf("  %-12s %-10s %-12s %s\n", name, p.Type, status, model)
			}
			return nil
		},
	}
}

// newProviderTestCommand creates the provider test command
func newProviderTestCommand(ctx context.Context, cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the resolved provider with a tiny generation call",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cli.Provider == nil {
				return provider.ErrNoProviderConfigured
			}

			if !cli.Provider.Available() {
				cli.Output.Error("Provider is not available")
				return provider.ErrProviderNotAvailable
			}
			cli.Output.Info("Testing provider " + cli.Provider.Name() + "...")

			resp, err := cli.Provider.GenerateCode(ctx, &provider.CodeRequest{
				Prompt:    "Reply with the single word: ok",
				MaxTokens: 8,
			})
			if err != nil {
				return fmt.Errorf("test call failed: %w", err)
			}

			cli.Output.Success(fmt.Sprintf("Provider responded (model %s)", resp.Model))
			return nil
		},
	}
}

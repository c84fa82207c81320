package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func apikeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the stored API key override",
		Long: `Manage the agent API key stored on disk. The stored key takes
precedence over the config file and environment variables. With no key
from any source the agent runs in simulated mode.`,
	}

	cmd.AddCommand(apikeySetCmd())
	cmd.AddCommand(apikeyClearCmd())
	cmd.AddCommand(apikeyShowCmd())

	return cmd
}

func apikeySetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <api-key>",
		Short: "Store an API key override",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := credentialStore().Set(args[0]); err != nil {
				return err
			}
			fmt.Println("API key stored. Agent operations will use the live provider.")
			return nil
		},
	}
}

func apikeyClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key override",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := credentialStore().Clear(); err != nil {
				return err
			}
			fmt.Println("Stored API key removed.")
			return nil
		},
	}
}

func apikeyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show where the effective credential comes from",
		RunE: func(_ *cobra.Command, _ []string) error {
			store := credentialStore()

			stored, err := store.Stored()
			if err != nil {
				return err
			}

			switch {
			case stored != "":
				fmt.Printf("Source: stored override (%s)\n", maskKey(stored))
			case viper.GetString("agent.api_key") != "":
				fmt.Println("Source: config file")
			default:
				resolved, err := store.Resolve("", "ANTHROPIC_API_KEY", "OPENAI_API_KEY")
				if err != nil {
					return err
				}
				if resolved != "" {
					fmt.Println("Source: environment variable")
				} else {
					fmt.Println("Source: none (simulated mode)")
				}
			}
			return nil
		},
	}
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

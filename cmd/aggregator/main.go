// Command aggregator fans one request out to a set of HTTP upstreams and
// joins their answers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/fanin/aggregator"
	"github.com/kbukum/fanin/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "aggregator",
		Short:         "Fan requests out to HTTP upstreams and join the answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yml (default: searched in standard locations)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file")

	root.AddCommand(newServeCmd(opts), newFetchCmd(opts), newVersionCmd())
	return root
}

// loadConfig reads the config file, the environment and the flags of cmd
// bound through binds (config key to flag name).
func loadConfig(cmd *cobra.Command, opts *rootOptions, binds map[string]string) (*aggregator.AppConfig, error) {
	loaderOpts := []config.LoaderOption{
		config.WithConfigFile(opts.configPath),
		config.WithEnvFile(opts.envFile),
		config.WithEnvPrefix("AGGREGATOR"),
	}
	for key, name := range binds {
		loaderOpts = append(loaderOpts, config.WithFlag(key, cmd.Flags().Lookup(name)))
	}

	var cfg aggregator.AppConfig
	if err := config.LoadConfig(aggregator.ServiceName, &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator: %v\n", err)
		os.Exit(1)
	}
}

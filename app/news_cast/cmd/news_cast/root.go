package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "news_cast",
		Short:         "每日新闻播客生成器",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "configs/config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCommand(&configFlag))
	return rootCmd
}

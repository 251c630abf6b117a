package command

import (
	"fmt"
	"os"

	branchescmd "prtrack/internal/command/branches"
	historycmd "prtrack/internal/command/history"
	nextcmd "prtrack/internal/command/next"
	trackcmd "prtrack/internal/command/track"
	"prtrack/internal/command/utils"
	"prtrack/internal/configutils"
	"prtrack/internal/errcodes"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var loadConfig = configutils.Load

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prtrack",
		Short:   "prtrack follows merged pull requests across branches",
		Long:    `Command-line utility that tells you when a merged pull request reaches each downstream branch.`,
		Version: fmt.Sprintf("%v, commit %v, built at %v", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose := configutils.GetBoolFlagOrDefault(cmd.Flags(), "verbose", false)
			utils.SetupLogging(cmd.ErrOrStderr(), verbose)

			path := configutils.GetStringFlagOrDefault(cmd.Flags(), "config", "")
			if err := loadConfig(path); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				os.Exit(errcodes.ExitCodeConfig)
			}
		},
	}

	rootCmd.AddCommand(
		trackcmd.New(),
		nextcmd.New(),
		branchescmd.New(),
		historycmd.New(),
	)

	rootCmd.PersistentFlags().StringP("repository", "r", "", "repository in form of owner/repo")
	rootCmd.PersistentFlags().String("config", "", "config path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")

	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(errcodes.ExitCodeGeneric)
	}
}

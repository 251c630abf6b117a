package next

import (
	"fmt"
	"io"

	"prtrack/internal/command/paramutils"
	"prtrack/internal/command/utils"
	"prtrack/internal/config"
	"prtrack/internal/domain/propagation"
	"prtrack/internal/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	getRepository = paramutils.GetRepository
	loadRules     = config.LoadRules
)

func runCmd(cmd *cobra.Command, args []string) error {
	branch, err := paramutils.ParseBranchArg(args)
	if err != nil {
		return err
	}

	repo, err := getRepository(paramutils.NewFlagRepo(cmd.Flags()))
	if err != nil {
		return err
	}

	rules, _, err := loadRules(viper.GetViper())
	if err != nil {
		return err
	}

	execute(rules, repo, branch, cmd.OutOrStdout())
	return nil
}

func execute(rules *propagation.RuleSet, repo client.Repository, branch string, out io.Writer) {
	for _, b := range rules.NextBranches(repo, branch) {
		fmt.Fprintln(out, b)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next BRANCH",
		Short: "List the branches a branch flows into",
		Long:  `Prints the branches that directly receive changes merged into BRANCH.`,
		Args:  cobra.ExactArgs(1),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	return cmd
}

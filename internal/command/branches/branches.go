package branches

import (
	"fmt"
	"io"

	"prtrack/internal/command/paramutils"
	"prtrack/internal/command/utils"
	"prtrack/internal/config"
	"prtrack/internal/domain/propagation"
	"prtrack/internal/pkg/client"

	"github.com/fatih/color"
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

// execute prints every branch reachable from branch in walk order.
// Branches reached along several paths are printed once per path.
func execute(rules *propagation.RuleSet, repo client.Repository, branch string, out io.Writer) {
	for _, b := range rules.AllBranches(repo, branch) {
		fmt.Fprintln(out, b)
	}

	if rules.HasCycle(repo, branch) {
		fmt.Fprintln(out, color.YellowString(
			"warning: the rules for %s loop back from %s, tracking would never finish", repo, branch,
		))
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branches BRANCH",
		Short: "List every branch a change to BRANCH eventually reaches",
		Args:  cobra.ExactArgs(1),
		Run:   utils.RunCommandWrapper(runCmd),
	}

	return cmd
}

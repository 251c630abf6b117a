package history

import (
	"fmt"
	"io"
	"time"

	"prtrack/internal/command/utils"
	"prtrack/internal/persistance"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
)

var getPersistance = persistance.GetDefault

func runCmd(cmd *cobra.Command, args []string) error {
	return execute(getPersistance(), cmd.OutOrStdout())
}

func execute(repo persistance.PersistanceRepo, out io.Writer) error {
	tracked, err := repo.GetTracked()
	if err != nil {
		return err
	}

	if len(tracked) == 0 {
		fmt.Fprintln(out, "nothing tracked yet")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("REPOSITORY", "#", "TITLE", "LAST TRACKED")
	table.AddRow("----------", "-", "-----", "------------")
	for _, v := range tracked {
		table.AddRow(v.Repository, v.Number, v.Title, v.LastTracked.Local().Format(time.RFC822))
	}

	fmt.Fprintln(out, table.String())
	return nil
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently tracked pull requests",
		Args:  cobra.NoArgs,
		Run:   utils.RunCommandWrapper(runCmd),
	}

	return cmd
}

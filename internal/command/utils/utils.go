package utils

import (
	"fmt"
	"io"
	"os"

	"prtrack/internal/domain/propagation"
	"prtrack/internal/errcodes"
	"prtrack/internal/schedule"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type runCommandError func(*cobra.Command, []string) error
type runCommandNoError func(*cobra.Command, []string)

var exit = os.Exit

// ExitCode maps configuration problems to ExitCodeConfig and everything
// else to ExitCodeGeneric.
func ExitCode(err error) int {
	switch {
	case errors.Is(err, propagation.ErrInvalidRulePattern),
		errors.Is(err, schedule.ErrInvalidSchedule),
		errors.Is(err, errcodes.ErrMissingGithubToken),
		errors.Is(err, errcodes.ErrUnknownStrategy),
		errors.Is(err, errcodes.ErrInvalidConfiguration):
		return errcodes.ExitCodeConfig
	default:
		return errcodes.ExitCodeGeneric
	}
}

func RunCommandWrapper(fn runCommandError) runCommandNoError {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			exit(ExitCode(err))
		}
	}
}

// SetupLogging points both loggers at w. The GitHub client logs through
// logrus, everything else through zerolog.
func SetupLogging(w io.Writer, verbose bool) {
	level := zerolog.InfoLevel
	logrusLevel := logrus.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
		logrusLevel = logrus.DebugLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})

	logrus.SetOutput(w)
	logrus.SetLevel(logrusLevel)
}

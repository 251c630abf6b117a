package track

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prtrack/internal/command/paramutils"
	"prtrack/internal/command/utils"
	"prtrack/internal/config"
	"prtrack/internal/domain/pullrequest"
	"prtrack/internal/persistance"
	"prtrack/internal/pkg/client"
	"prtrack/internal/pkg/github"
	"prtrack/internal/schedule"
	"prtrack/internal/tracker"

	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrNothingTracked = errors.New("none of the pull requests could be tracked")

const statusRefresh = time.Second

type service interface {
	Start(ctx context.Context, repo client.Repository, number int) (*pullrequest.Snapshot, error)
	Wait()
	Shutdown()
	Registry() *tracker.Registry
}

type nextTicker interface {
	Next() time.Time
}

var newService = func(v *viper.Viper, notifications io.Writer) (service, nextTicker, error) {
	settings, err := config.LoadSettings(v, schedule.RealClock(), notifications)
	if err != nil {
		return nil, nil, err
	}

	gh, err := github.DefaultClient()
	if err != nil {
		return nil, nil, err
	}

	s := tracker.NewService(&tracker.ServiceOptions{
		Fetcher:  gh,
		Oracle:   gh,
		Sink:     settings.Sink,
		Gate:     settings.Gate,
		Rules:    settings.Rules,
		Bases:    settings.Bases,
		Strategy: settings.Strategy,
		History:  persistance.GetDefault(),
	})

	return s, settings.Gate, nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	params, err := parseParams(paramutils.NewFlagRepo(cmd.Flags()), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notifications := out
	var view *statusView
	if params.Status {
		view = newStatusView(out)
		notifications = view.Notifications()
	}

	s, gate, err := newService(viper.GetViper(), notifications)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, s, gate, params, out, view)
}

// execute starts every requested tracker and blocks until they finish or
// ctx is done. A non-nil view gets the live status table.
func execute(ctx context.Context, s service, gate nextTicker, params *cmdParams, out io.Writer, view *statusView) error {
	started := 0
	for _, n := range params.Numbers {
		snapshot, err := s.Start(ctx, params.Repository, n)
		if err != nil {
			fmt.Fprintf(out, "#%d: %s\n", n, err)
			continue
		}

		fmt.Fprintf(out, "tracking #%d %s (%s)\n", n, snapshot.Title, snapshot.State)
		started++
	}

	if started == 0 {
		return ErrNothingTracked
	}

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	if view != nil {
		renderStatus(ctx, done, s.Registry(), gate, view)
	}

	select {
	case <-done:
		log.Info().Msg("every tracked pull request reached all of its branches")
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		s.Shutdown()
	}

	return nil
}

// statusView keeps a table redrawn in place at the bottom of the terminal.
// Lines written through Notifications land above the table and are never
// erased by a redraw.
type statusView struct {
	writer *uilive.Writer
}

func newStatusView(out io.Writer) *statusView {
	writer := uilive.New()
	writer.Out = out

	return &statusView{writer: writer}
}

func (v *statusView) Notifications() io.Writer {
	return v.writer.Bypass()
}

func (v *statusView) Render(table *uitable.Table) error {
	fmt.Fprintln(v.writer, table.String())
	return v.writer.Flush()
}

// renderStatus redraws the table of active edges until done is closed or
// ctx is cancelled.
func renderStatus(ctx context.Context, done <-chan struct{}, r *tracker.Registry, gate nextTicker, view *statusView) {
	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	for {
		if err := view.Render(statusTable(r.Active(), gate.Next(), time.Now())); err != nil {
			log.Warn().Err(err).Msg("cannot render status")
		}

		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}

	return h
}

func statusTable(edges []tracker.Edge, next, now time.Time) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("#", "REPOSITORY", "BRANCH", "HEAD", "POLLS", "RUNNING")
	table.AddRow("-", "----------", "------", "----", "-----", "-------")

	for _, e := range edges {
		table.AddRow(
			e.PullRequest,
			e.Repository.String(),
			e.Branch,
			shortHash(e.Head),
			e.Polls,
			now.Sub(e.Started).Truncate(time.Second),
		)
	}
	table.AddRow("")
	table.AddRow(fmt.Sprintf("%d active, next poll at %s", len(edges), next.Format("15:04:05")))

	return table
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track NUMBER...",
		Short: "Track merged pull requests across branches",
		Long: `Follows each pull request through the repository's propagation rules
and announces every branch it reaches. Runs until all of them reached
every branch or until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		Run:  utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().Bool("status", false, "render a live table of the running trackers")

	return cmd
}

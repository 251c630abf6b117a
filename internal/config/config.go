package config

import (
	"io"

	"prtrack/internal/domain/propagation"
	"prtrack/internal/errcodes"
	"prtrack/internal/gitutils"
	"prtrack/internal/notify"
	"prtrack/internal/pkg/client"
	"prtrack/internal/schedule"
	"prtrack/internal/tracker"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// RepositoryConfig is one entry of the repositories list.
type RepositoryConfig struct {
	Repository string                   `mapstructure:"repository"`
	Base       string                   `mapstructure:"base"`
	Rules      []propagation.RuleConfig `mapstructure:"rules"`
}

// Settings is everything a tracking run needs besides the GitHub client.
type Settings struct {
	Rules    *propagation.RuleSet
	Bases    map[client.Repository]string
	Gate     *schedule.Gate
	Strategy tracker.Strategy
	Sink     notify.Sink
}

func LoadRepositories(v *viper.Viper) ([]RepositoryConfig, error) {
	var repos []RepositoryConfig
	if err := v.UnmarshalKey("repositories", &repos); err != nil {
		return nil, errors.Wrapf(errcodes.ErrInvalidConfiguration, "cannot decode repositories: %v", err)
	}

	return repos, nil
}

// LoadRules compiles the propagation rules and collects base branches.
// Rules for a repository listed twice are concatenated.
func LoadRules(v *viper.Viper) (*propagation.RuleSet, map[client.Repository]string, error) {
	repos, err := LoadRepositories(v)
	if err != nil {
		return nil, nil, err
	}

	rules := make(map[client.Repository][]propagation.RuleConfig, len(repos))
	bases := make(map[client.Repository]string, len(repos))
	for _, rc := range repos {
		r, err := client.ParseRepository(rc.Repository)
		if err != nil {
			return nil, nil, errors.Wrapf(errcodes.ErrInvalidConfiguration, "repositories: %q: %v", rc.Repository, err)
		}

		rules[r] = append(rules[r], rc.Rules...)
		if rc.Base != "" {
			bases[r] = rc.Base
		}
	}

	rs, err := propagation.NewRuleSet(rules)
	if err != nil {
		return nil, nil, err
	}

	return rs, bases, nil
}

// NewSink builds the notification sinks enabled in configuration. With
// none enabled notifications still go to out.
func NewSink(v *viper.Viper, out io.Writer) notify.Sink {
	var sinks notify.Multi
	if v.GetBool("notify.stdout") {
		sinks = append(sinks, notify.NewWriterSink(out))
	}
	if url := v.GetString("notify.webhook"); url != "" {
		sinks = append(sinks, notify.NewWebhookSink(url))
	}

	if len(sinks) == 0 {
		return notify.NewWriterSink(out)
	}
	if len(sinks) == 1 {
		return sinks[0]
	}

	return sinks
}

// LoadSettings builds the tracking settings. Terminal notifications are
// written to out.
func LoadSettings(v *viper.Viper, clock schedule.Clock, out io.Writer) (*Settings, error) {
	rules, bases, err := LoadRules(v)
	if err != nil {
		return nil, err
	}

	gate, err := schedule.New(v.GetString("schedule"), clock)
	if err != nil {
		return nil, err
	}

	strategy, err := tracker.ParseStrategy(v.GetString("strategy"))
	if err != nil {
		return nil, err
	}

	return &Settings{
		Rules:    rules,
		Bases:    bases,
		Gate:     gate,
		Strategy: strategy,
		Sink:     NewSink(v, out),
	}, nil
}

type RepositoryParams struct {
	Name string
}

type paramsFiller interface {
	Fill(params *RepositoryParams)
}

var getRemoteInfo = gitutils.GetRemoteInfo

type localRepositoryParamsFiller struct{}

func (pf *localRepositoryParamsFiller) Fill(params *RepositoryParams) {
	defaultRepo, err := getRemoteInfo()
	if err == nil {
		params.Name = defaultRepo.String()
	}
}

type viperConfigParamsFiller struct {
	v *viper.Viper
}

func (pf *viperConfigParamsFiller) Fill(params *RepositoryParams) {
	if dr := pf.v.GetString("default.repository"); dr != "" {
		params.Name = dr
	}
}

type flagParamsFiller struct {
	name string
}

func (pf *flagParamsFiller) Fill(params *RepositoryParams) {
	if pf.name != "" {
		params.Name = pf.name
	}
}

// DefaultRepository resolves the repository to work on. Later fillers win:
// the local git remote, then default.repository, then the flag value.
func DefaultRepository(v *viper.Viper, flag string) (client.Repository, error) {
	params := &RepositoryParams{}
	paramsFillers := []paramsFiller{
		&localRepositoryParamsFiller{},
		&viperConfigParamsFiller{v: v},
		&flagParamsFiller{name: flag},
	}

	for _, pf := range paramsFillers {
		pf.Fill(params)
	}

	return client.NewRepositoryFromOptions(&client.RepositoryOptions{
		FullRepositoryName: params.Name,
	})
}

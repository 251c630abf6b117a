package propagation

import (
	"regexp"
	"sort"

	"prtrack/internal/pkg/client"

	"github.com/pkg/errors"
)

// MaxExpansion bounds AllBranches so that a cyclic rule set cannot hang
// the caller.
const MaxExpansion = 1024

var ErrInvalidRulePattern = errors.New("invalid propagation rule pattern")

// RuleConfig is the uncompiled form of a rule as it appears in the
// configuration file.
type RuleConfig struct {
	Pattern string   `mapstructure:"pattern"`
	Targets []string `mapstructure:"targets"`
}

// Rule maps every branch matching Pattern to the branches named by
// Targets. Targets may reference capture groups of Pattern ($1, ${name}).
type Rule struct {
	Pattern *regexp.Regexp
	Targets []string
}

func (r *Rule) expand(branch string) []string {
	match := r.Pattern.FindStringSubmatchIndex(branch)
	if match == nil {
		return nil
	}

	out := make([]string, 0, len(r.Targets))
	for _, t := range r.Targets {
		out = append(out, string(r.Pattern.ExpandString(nil, t, branch, match)))
	}

	return out
}

// RuleSet holds the compiled propagation rules of every configured
// repository. It is never modified after NewRuleSet returns and can be
// shared between goroutines.
type RuleSet struct {
	rules map[client.Repository][]Rule
}

func compile(pattern string) (*regexp.Regexp, error) {
	// Patterns always describe a whole branch name.
	return regexp.Compile(`^(?:` + pattern + `)$`)
}

func NewRuleSet(config map[client.Repository][]RuleConfig) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[client.Repository][]Rule, len(config))}
	for repo, rules := range config {
		compiled := make([]Rule, 0, len(rules))
		for _, rc := range rules {
			re, err := compile(rc.Pattern)
			if err != nil {
				return nil, errors.Wrapf(
					ErrInvalidRulePattern,
					"%s: %q: %v", repo, rc.Pattern, err,
				)
			}

			compiled = append(compiled, Rule{
				Pattern: re,
				Targets: append([]string(nil), rc.Targets...),
			})
		}
		rs.rules[repo] = compiled
	}

	return rs, nil
}

// NextBranches returns the branches that directly receive changes from
// branch. The result is empty when branch is a leaf of the propagation
// graph or the repository has no rules.
func (rs *RuleSet) NextBranches(repo client.Repository, branch string) []string {
	var next []string
	seen := map[string]bool{}
	for i := range rs.rules[repo] {
		for _, b := range rs.rules[repo][i].expand(branch) {
			if seen[b] {
				continue
			}
			seen[b] = true
			next = append(next, b)
		}
	}

	return next
}

// AllBranches walks the propagation graph breadth first, starting with
// branch itself. Branches reachable through several paths are listed once
// per path.
func (rs *RuleSet) AllBranches(repo client.Repository, branch string) []string {
	all := []string{branch}
	for i := 0; i < len(all) && len(all) < MaxExpansion; i++ {
		all = append(all, rs.NextBranches(repo, all[i])...)
	}

	if len(all) > MaxExpansion {
		all = all[:MaxExpansion]
	}

	return all
}

// HasCycle reports whether a branch reachable from branch can propagate
// back into one of its own ancestors.
func (rs *RuleSet) HasCycle(repo client.Repository, branch string) bool {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}

	var visit func(string) bool
	visit = func(b string) bool {
		switch state[b] {
		case visiting:
			return true
		case done:
			return false
		}
		// Templates can mint new names forever; treat that as a cycle.
		if len(state) >= MaxExpansion {
			return true
		}

		state[b] = visiting
		for _, n := range rs.NextBranches(repo, b) {
			if visit(n) {
				return true
			}
		}
		state[b] = done

		return false
	}

	return visit(branch)
}

func (rs *RuleSet) Repositories() []client.Repository {
	repos := make([]client.Repository, 0, len(rs.rules))
	for r := range rs.rules {
		repos = append(repos, r)
	}

	sort.Slice(repos, func(i, j int) bool {
		return repos[i].String() < repos[j].String()
	})

	return repos
}

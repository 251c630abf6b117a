package branches

import (
	"bytes"
	"testing"

	"prtrack/internal/domain/propagation"
	"prtrack/internal/pkg/client"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

var nixpkgs = client.Repository{Owner: "NixOS", Name: "nixpkgs"}

func ruleSet(t *testing.T, rc ...propagation.RuleConfig) *propagation.RuleSet {
	rs, err := propagation.NewRuleSet(map[client.Repository][]propagation.RuleConfig{nixpkgs: rc})
	assert.NoError(t, err)
	return rs
}

func Test_execute(t *testing.T) {
	color.NoColor = true

	t.Run("prints the walk including the start branch", func(t *testing.T) {
		rs := ruleSet(t,
			propagation.RuleConfig{Pattern: "staging", Targets: []string{"staging-next"}},
			propagation.RuleConfig{Pattern: "staging-next", Targets: []string{"master"}},
		)
		out := &bytes.Buffer{}

		execute(rs, nixpkgs, "staging", out)
		assert.Equal(t, "staging\nstaging-next\nmaster\n", out.String())
	})

	t.Run("warns about cycles", func(t *testing.T) {
		rs := ruleSet(t,
			propagation.RuleConfig{Pattern: "a", Targets: []string{"b"}},
			propagation.RuleConfig{Pattern: "b", Targets: []string{"a"}},
		)
		out := &bytes.Buffer{}

		execute(rs, nixpkgs, "a", out)
		assert.Contains(t, out.String(), "warning: the rules for NixOS/nixpkgs loop back from a")
	})

	t.Run("does not warn about diamonds", func(t *testing.T) {
		rs := ruleSet(t,
			propagation.RuleConfig{Pattern: "a", Targets: []string{"b", "c"}},
			propagation.RuleConfig{Pattern: "b|c", Targets: []string{"d"}},
		)
		out := &bytes.Buffer{}

		execute(rs, nixpkgs, "a", out)
		assert.Equal(t, "a\nb\nc\nd\nd\n", out.String())
	})
}

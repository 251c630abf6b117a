package track

import (
	"prtrack/internal/command/paramutils"
	"prtrack/internal/pkg/client"
)

type cmdParams struct {
	Repository client.Repository
	Numbers    []int
	Status     bool
}

var getRepository = paramutils.GetRepository

func parseParams(flags paramutils.FlagRepo, args []string) (*cmdParams, error) {
	numbers, err := paramutils.ParseNumberArgs(args)
	if err != nil {
		return nil, err
	}

	repo, err := getRepository(flags)
	if err != nil {
		return nil, err
	}

	return &cmdParams{
		Repository: repo,
		Numbers:    numbers,
		Status:     flags.GetBoolOrDefault("status", false),
	}, nil
}

package gitutils

import (
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_repository_GetRemoteURLs(t *testing.T) {
	t.Run("fails when cannot get remotes", func(t *testing.T) {
		vErr := errors.New("remotes err")
		r := &repository{
			r: &MockGoGitRepository{
				Err: vErr,
			},
		}

		_, err := r.GetRemoteURLs()
		assert.EqualError(t, err, vErr.Error())
	})

	t.Run("lists origin first", func(t *testing.T) {
		r := &repository{
			r: &MockGoGitRepository{
				RemotesValue: []*git.Remote{
					git.NewRemote(nil, &config.RemoteConfig{
						Name: "fork",
						URLs: []string{"git@github.com:me/nixpkgs.git"},
					}),
					git.NewRemote(nil, &config.RemoteConfig{
						Name: "origin",
						URLs: []string{"https://github.com/NixOS/nixpkgs.git"},
					}),
				},
			},
		}

		urls, err := r.GetRemoteURLs()
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"https://github.com/NixOS/nixpkgs.git",
			"git@github.com:me/nixpkgs.git",
		}, urls)
	})
}

func TestOpenRepoRecursevely(t *testing.T) {
	t.Run("finds the repository from a nested directory", func(t *testing.T) {
		root := t.TempDir()
		_, err := git.PlainInit(root, false)
		assert.NoError(t, err)

		nested := root + "/a/b"
		assert.NoError(t, mkdirAll(nested))

		r, err := OpenRepoRecursevely(nested)
		assert.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("fails outside of a repository", func(t *testing.T) {
		_, err := OpenRepoRecursevely(t.TempDir())
		assert.Error(t, err)
	})
}

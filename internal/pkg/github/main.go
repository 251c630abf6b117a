package github

import (
	"context"
	"fmt"
	"strings"

	"prtrack/internal/domain/comparison"
	"prtrack/internal/domain/pullrequest"
	"prtrack/internal/errcodes"
	"prtrack/internal/pkg/client"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const DefaultEndpoint = "https://api.github.com/graphql"

var (
	ErrGraphQL           = errors.New("graphql query returned errors")
	ErrPullRequestAbsent = errors.New("pull request not found")
	ErrRefAbsent         = errors.New("branch not found")
)

// GithubGraphQLClient answers pull request metadata and branch comparison
// queries against the GitHub GraphQL API.
type GithubGraphQLClient struct {
	endpoint string
	rc       *resty.Client
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
}

type ClientOptions struct {
	Token    string
	Endpoint string
	// MaxConcurrentRequests caps in-flight requests; 0 means no cap.
	MaxConcurrentRequests int
	// RequestsPerSecond paces requests; 0 means no limit.
	RequestsPerSecond float64
}

func New(o *ClientOptions) *GithubGraphQLClient {
	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	var sem *semaphore.Weighted
	if o.MaxConcurrentRequests > 0 {
		sem = semaphore.NewWeighted(int64(o.MaxConcurrentRequests))
	}

	var limiter *rate.Limiter
	if o.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.RequestsPerSecond), 1)
	}

	return &GithubGraphQLClient{
		endpoint: endpoint,
		rc: resty.New().
			SetAuthToken(o.Token).
			SetHeader("content-type", "application/json"),
		sem:     sem,
		limiter: limiter,
	}
}

func getDefaultConfiguration() (*ClientOptions, error) {
	token := viper.GetString("github.token")
	if token == "" {
		return nil, errcodes.ErrMissingGithubToken
	}

	return &ClientOptions{
		Token:                 token,
		Endpoint:              viper.GetString("github.endpoint"),
		MaxConcurrentRequests: viper.GetInt("github.max_concurrent_requests"),
		RequestsPerSecond:     viper.GetFloat64("github.requests_per_second"),
	}, nil
}

func DefaultClient() (*GithubGraphQLClient, error) {
	o, err := getDefaultConfiguration()
	if err != nil {
		return nil, err
	}

	return New(o), nil
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type githubError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

func (c *GithubGraphQLClient) query(ctx context.Context, q string, vars map[string]interface{}) (gjson.Result, error) {
	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return gjson.Result{}, err
		}
		defer c.sem.Release(1)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return gjson.Result{}, err
		}
	}

	r, err := c.rc.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: q, Variables: vars}).
		SetError(githubError{}).
		Post(c.endpoint)
	if err != nil {
		log.WithError(err).WithField("endpoint", c.endpoint).Debug("graphql request failed")
		return gjson.Result{}, err
	}

	if r.IsError() {
		msg := strings.TrimSpace(string(r.Body()))
		if e, ok := r.Error().(*githubError); ok && e.Message != "" {
			msg = e.Message
		}
		log.WithField("status", r.StatusCode()).Debug("graphql request rejected")
		return gjson.Result{}, fmt.Errorf("github: HTTP %d: %s", r.StatusCode(), msg)
	}

	parsed := gjson.ParseBytes(r.Body())
	if errs := parsed.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		var messages []string
		errs.ForEach(func(_, value gjson.Result) bool {
			messages = append(messages, value.Get("message").String())
			return true
		})
		return gjson.Result{}, errors.Wrap(ErrGraphQL, strings.Join(messages, "; "))
	}

	return parsed.Get("data"), nil
}

const pullRequestQuery = `query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: $number) {
      number
      title
      url
      state
      baseRefName
      headRefOid
      mergeCommit { oid }
    }
  }
}`

func (c *GithubGraphQLClient) FetchSnapshot(ctx context.Context, o *pullrequest.FetchOptions) (*pullrequest.Snapshot, error) {
	data, err := c.query(ctx, pullRequestQuery, map[string]interface{}{
		"owner":  o.Repository.Owner,
		"name":   o.Repository.Name,
		"number": o.Number,
	})
	if err != nil {
		return nil, errors.Wrap(pullrequest.ErrRemoteQueryFailed, err.Error())
	}

	pr := data.Get("repository.pullRequest")
	if !pr.IsObject() {
		return nil, errors.Wrapf(
			pullrequest.ErrRemoteQueryFailed,
			"%s#%d: %v", o.Repository, o.Number, ErrPullRequestAbsent,
		)
	}

	state, err := pullrequest.ParseState(pr.Get("state").String())
	if err != nil {
		return nil, errors.Wrap(pullrequest.ErrRemoteQueryFailed, err.Error())
	}

	return &pullrequest.Snapshot{
		Number:      int(pr.Get("number").Int()),
		Title:       pr.Get("title").String(),
		URL:         pr.Get("url").String(),
		State:       state,
		BaseRef:     pr.Get("baseRefName").String(),
		HeadCommit:  pr.Get("headRefOid").String(),
		MergeCommit: pr.Get("mergeCommit.oid").String(),
	}, nil
}

const compareQuery = `query($owner: String!, $name: String!, $base: String!, $head: String!) {
  repository(owner: $owner, name: $name) {
    ref(qualifiedName: $base) {
      compare(headRef: $head) {
        status
        aheadBy
        behindBy
      }
    }
  }
}`

// Compare reports how head relates to the tip of branch base.
func (c *GithubGraphQLClient) Compare(ctx context.Context, repo client.Repository, base, head string) (comparison.Status, error) {
	data, err := c.query(ctx, compareQuery, map[string]interface{}{
		"owner": repo.Owner,
		"name":  repo.Name,
		"base":  "refs/heads/" + base,
		"head":  head,
	})
	if err != nil {
		return 0, err
	}

	ref := data.Get("repository.ref")
	if !ref.IsObject() {
		return 0, errors.Wrapf(ErrRefAbsent, "%s: %s", repo, base)
	}

	cmp := ref.Get("compare")
	log.WithFields(log.Fields{
		"repository": repo.String(),
		"base":       base,
		"status":     cmp.Get("status").String(),
		"ahead_by":   cmp.Get("aheadBy").Int(),
		"behind_by":  cmp.Get("behindBy").Int(),
	}).Debug("compared")

	return comparison.Parse(cmp.Get("status").String())
}

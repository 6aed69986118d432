package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/machinebox/graphql"

	"github.com/capcurve/capcurve/core/curvefit"
	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/schema"
)

// githubGraphQLURL is the endpoint open issues are fetched from.
const githubGraphQLURL = "https://api.github.com/graphql"

// issuePageSize bounds one issue listing query.
const issuePageSize = 50

// Issue is one open issue considered for impact estimation.
type Issue struct {
	Number int
	Title  string
	Body   string
}

// ScoreIssue scores an issue like a commit subject, over its title and
// body together.
func ScoreIssue(rubric *scoring.Rubric, title, body string) float64 {
	return rubric.Score(strings.TrimSpace(title + " " + body)).Total
}

// issueLister is swapped out in tests.
type issueLister interface {
	Run(ctx context.Context, req *graphql.Request, resp any) error
}

// FetchOpenIssues lists open issues of owner/name via the GitHub
// GraphQL API, newest first, one page.
func FetchOpenIssues(ctx context.Context, client issueLister, owner, name, token string) ([]Issue, error) {
	req := graphql.NewRequest(`
	query ($owner: String!, $name: String!, $first: Int!) {
	  repository(owner: $owner, name: $name) {
	    issues(first: $first, states: OPEN, orderBy: {field: CREATED_AT, direction: DESC}) {
	      nodes {
	        number
	        title
	        body
	      }
	    }
	  }
	}`)
	req.Var("owner", owner)
	req.Var("name", name)
	req.Var("first", issuePageSize)
	req.Header.Set("Authorization", "Bearer "+token)

	var resp struct {
		Repository struct {
			Issues struct {
				Nodes []struct {
					Number int    `json:"number"`
					Title  string `json:"title"`
					Body   string `json:"body"`
				} `json:"nodes"`
			} `json:"issues"`
		} `json:"repository"`
	}
	if err := client.Run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, name, err)
	}

	issues := make([]Issue, 0, len(resp.Repository.Issues.Nodes))
	for _, node := range resp.Repository.Issues.Nodes {
		issues = append(issues, Issue{Number: node.Number, Title: node.Title, Body: node.Body})
	}
	return issues, nil
}

// NewIssueClient builds the GraphQL client used by FetchOpenIssues.
func NewIssueClient() *graphql.Client {
	return graphql.NewClient(githubGraphQLURL)
}

// RankIssueImpacts scores each issue and estimates its effect on the
// convergence date against the given models, sorted by absolute
// impact descending.
func RankIssueImpacts(rubric *scoring.Rubric, issues []Issue, models schema.Models) []schema.IssueImpact {
	impacts := make([]schema.IssueImpact, 0, len(issues))
	for _, issue := range issues {
		score := ScoreIssue(rubric, issue.Title, issue.Body)
		impacts = append(impacts, schema.IssueImpact{
			Number:     issue.Number,
			Title:      issue.Title,
			Score:      score,
			ImpactDays: curvefit.EstimateConvergenceImpact(score, models),
		})
	}
	sort.SliceStable(impacts, func(i, j int) bool {
		return math.Abs(impacts[i].ImpactDays) > math.Abs(impacts[j].ImpactDays)
	})
	return impacts
}

// Package enrich classifies commit subjects with a hosted language
// model. Classifications land in the enrich cache keyed by commit hash;
// anything the classifier cannot handle falls back to pattern scoring
// at score time and stays out of the cache.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/capcurve/capcurve/core/scoring"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/jsoncache"
	"github.com/capcurve/capcurve/schema"
)

const (
	// DefaultBaseURL is the messages endpoint used when no override is
	// configured.
	DefaultBaseURL = "https://api.anthropic.com/v1/messages"

	batchSize      = 50
	maxRetries     = 3
	requestTimeout = 120 * time.Second
	apiVersion     = "2023-06-01"
	maxTokens      = 4096

	// keywordsPerCategory bounds how many keywords the system prompt
	// lists per category.
	keywordsPerCategory = 6
)

// Client talks to an Anthropic-compatible messages endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	modelID string
	apiKey  string
	rubric  *scoring.Rubric
	system  string
	sleep   func(time.Duration)
}

// NewClient builds a classifier client. An empty baseURL selects the
// default endpoint. The rubric supplies the category vocabulary for
// both the system prompt and response validation.
func NewClient(baseURL, modelID, apiKey string, rubric *scoring.Rubric) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		modelID: modelID,
		apiKey:  apiKey,
		rubric:  rubric,
		system:  systemPrompt(rubric),
		sleep:   time.Sleep,
	}
}

// regexSyntax matches the regex metacharacters stripped when turning
// patterns into human-readable keywords.
var regexSyntax = regexp.MustCompile(`[\\.*?+\[\](){}|^$]`)

// categoryKeywords renders one keyword list from a category's patterns.
func categoryKeywords(patterns []string) []string {
	keywords := make([]string, 0, keywordsPerCategory)
	for _, p := range patterns {
		clean := regexSyntax.ReplaceAllString(p, " ")
		clean = strings.Join(strings.Fields(clean), " ")
		if clean == "" {
			continue
		}
		keywords = append(keywords, clean)
		if len(keywords) == keywordsPerCategory {
			break
		}
	}
	return keywords
}

// systemPrompt enumerates the rubric for the classifier. Categories are
// listed in sorted order so the prompt is stable across runs.
func systemPrompt(rubric *scoring.Rubric) string {
	names := rubric.Categories()
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		kw := categoryKeywords(rubric.Patterns(name))
		lines = append(lines, fmt.Sprintf("- **%s** (weight %g): %s", name, rubric.Weight(name), strings.Join(kw, ", ")))
	}

	return fmt.Sprintf(`You classify git commits against a software capability rubric.

Categories:
%s

For each commit, output a JSON object with key "c" mapping category names to hit_count (1-3).
- 1 = minor/tangential relevance
- 2 = directly relevant
- 3 = deeply relevant, core implementation
- Omit categories with 0 relevance (empty dict for no matches)

Output a JSON array with one object per commit, in the exact input order.
Example for 3 commits: [{"c": {"agents": 2, "self_modify": 1}}, {"c": {}}, {"c": {"foundation": 1}}]

Output ONLY the JSON array, no other text.`, strings.Join(lines, "\n"))
}

// ClassifyCommits classifies every commit missing from the cache, in
// batches, persisting the cache after each batch. It returns how many
// commits were classified and how many were left for pattern fallback.
// A missing API key leaves every uncached commit to the fallback path.
func (c *Client) ClassifyCommits(ctx context.Context, commits []schema.Commit, cache *jsoncache.Cache[schema.CategoryHits]) (enriched, fallback int) {
	var uncached []schema.Commit
	for _, commit := range commits {
		if _, ok := cache.Get(commit.Hash); !ok {
			uncached = append(uncached, commit)
		}
	}
	if len(uncached) == 0 {
		fmt.Println("  All commits already classified.")
		return 0, 0
	}
	if strings.TrimSpace(c.apiKey) == "" {
		contract.LogWarn("no API key configured, scoring by pattern instead", nil)
		return 0, len(uncached)
	}

	fmt.Printf("  %d commits need classification (%d cached)\n", len(uncached), len(commits)-len(uncached))

	totalBatches := (len(uncached) + batchSize - 1) / batchSize
	for start := 0; start < len(uncached); start += batchSize {
		end := start + batchSize
		if end > len(uncached) {
			end = len(uncached)
		}
		batch := uncached[start:end]
		fmt.Printf("  Batch %d/%d (%d commits)... ", start/batchSize+1, totalBatches, len(batch))

		ok, fell := c.classifyBatch(ctx, batch, cache)
		enriched += ok
		fallback += fell

		if err := cache.Save(); err != nil {
			contract.LogWarn("could not persist classifier cache", err)
		}
	}
	return enriched, fallback
}

// classifyBatch sends one batch, retrying transient failures with
// exponential backoff. Per-item shape errors leave that commit for the
// fallback path; a batch that fails every attempt falls back wholesale.
func (c *Client) classifyBatch(ctx context.Context, batch []schema.Commit, cache *jsoncache.Cache[schema.CategoryHits]) (enriched, fallback int) {
	userMsg := batchPrompt(batch)

	for attempt := 0; attempt < maxRetries; attempt++ {
		text, err := c.call(ctx, userMsg)
		var results []json.RawMessage
		if err == nil {
			results, err = parseBatchResponse(text, len(batch))
		}
		if err != nil {
			if attempt < maxRetries-1 {
				fmt.Printf("retry (%v)... ", err)
				c.sleep(time.Duration(1<<attempt) * time.Second)
				continue
			}
			fmt.Printf("failed (%v), using pattern fallback\n", err)
			return 0, len(batch)
		}

		for i, commit := range batch {
			hits, ok := parseItem(results[i], c.rubric)
			if !ok {
				fallback++
				continue
			}
			cache.Put(commit.Hash, hits)
			enriched++
		}
		fmt.Printf("ok (%d classified, %d fallback)\n", enriched, fallback)
		return enriched, fallback
	}
	return 0, len(batch)
}

// batchPrompt renders the numbered commit list sent as the user turn.
func batchPrompt(batch []schema.Commit) string {
	var b strings.Builder
	for i, commit := range batch {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, filepath.Base(commit.Repo), commit.Subject)
	}
	return strings.TrimRight(b.String(), "\n")
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// call performs one messages API request and returns the first text
// block of the response.
func (c *Client) call(ctx context.Context, userMsg string) (string, error) {
	payload, err := json.Marshal(messagesRequest{
		Model:     c.modelID,
		MaxTokens: maxTokens,
		System:    c.system,
		Messages:  []chatMessage{{Role: "user", Content: userMsg}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("classifier API response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}

// parseBatchResponse strips optional markdown fences and decodes the
// JSON array, requiring exactly one entry per batch item.
func parseBatchResponse(text string, want int) ([]json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if _, rest, ok := strings.Cut(text, "\n"); ok {
			text = rest
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var results []json.RawMessage
	if err := json.Unmarshal([]byte(text), &results); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	if len(results) != want {
		return nil, fmt.Errorf("expected array of %d, got %d", want, len(results))
	}
	return results, nil
}

// parseItem validates one batch entry. Unknown categories are dropped
// and hit counts clamp to [1, 3]. A missing or malformed "c" object
// rejects the entry.
func parseItem(raw json.RawMessage, rubric *scoring.Rubric) (schema.CategoryHits, bool) {
	var entry struct {
		C *map[string]float64 `json:"c"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil || entry.C == nil {
		return nil, false
	}

	hits := make(schema.CategoryHits, len(*entry.C))
	for name, count := range *entry.C {
		if !rubric.Has(name) {
			continue
		}
		n := int(count)
		if n < 1 {
			n = 1
		} else if n > 3 {
			n = 3
		}
		hits[name] = n
	}
	return hits, true
}

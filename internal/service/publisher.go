package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PublishResult is the outcome of one platform attempt. Failures are carried
// in Error as a human-readable reason; a publisher never returns a Go error
// and never panics.
type PublishResult struct {
	Success    bool
	ExternalID string
	Error      string
}

// PlatformPublisher pushes one post live on one platform. Implementations
// apply their own timeouts and report failure instead of hanging.
type PlatformPublisher interface {
	Publish(ctx context.Context, post *models.Post, page *models.Page) PublishResult
}

// PublisherRegistry maps the fixed platform keys to their publishers. Pages
// in simulation mode always resolve to the simulation publisher so the
// orchestration and notification paths run identically to production.
type PublisherRegistry struct {
	publishers map[string]PlatformPublisher
	simulation PlatformPublisher
}

func NewPublisherRegistry() *PublisherRegistry {
	return &PublisherRegistry{
		publishers: make(map[string]PlatformPublisher),
		simulation: NewSimulationPublisher(),
	}
}

func (r *PublisherRegistry) Register(platform string, p PlatformPublisher) {
	r.publishers[platform] = p
}

func (r *PublisherRegistry) For(platform string, page *models.Page) PlatformPublisher {
	if page.Simulation {
		return r.simulation
	}
	return r.publishers[platform]
}

type simulationPublisher struct{}

// NewSimulationPublisher returns a publisher that performs no network effect
// and synthesizes a successful result with a generated external id.
func NewSimulationPublisher() PlatformPublisher {
	return &simulationPublisher{}
}

func (s *simulationPublisher) Publish(ctx context.Context, post *models.Post, page *models.Page) PublishResult {
	id, err := gonanoid.New()
	if err != nil {
		id = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return PublishResult{Success: true, ExternalID: "sim_" + id}
}

type graphPublisher struct {
	platform  string
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewGraphPublisher returns the HTTP publisher for one platform. The page's
// access credential is stored encrypted and decrypted only for the call.
func NewGraphPublisher(platform, baseURL, secretKey string) PlatformPublisher {
	return &graphPublisher{
		platform:  platform,
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *graphPublisher) Publish(ctx context.Context, post *models.Post, page *models.Page) PublishResult {
	token, err := utils.Decrypt(page.AccessToken, []byte(g.secretKey))
	if err != nil {
		return PublishResult{Error: fmt.Sprintf("invalid page credential: %v", err)}
	}

	content := post.PlatformContent[g.platform]
	if content == "" {
		content = post.Title
	}

	form := url.Values{}
	form.Add("message", content)
	form.Add("access_token", token)

	endpoint := fmt.Sprintf("%s/%s/posts", g.baseURL, g.platform)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return PublishResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return PublishResult{Error: fmt.Sprintf("%s request failed: %v", g.platform, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return PublishResult{Error: fmt.Sprintf("%s returned status %d: %s", g.platform, resp.StatusCode, body)}
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return PublishResult{Error: fmt.Sprintf("failed to decode %s response: %v", g.platform, err)}
	}

	return PublishResult{Success: true, ExternalID: result.ID}
}

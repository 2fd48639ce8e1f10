package gee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/farisanuar/teg-site-survey/internal/fetch"
)

// DefaultBaseURL is the production Earth Engine REST endpoint.
const DefaultBaseURL = "https://earthengine.googleapis.com/v1"

// Client talks to the Earth Engine REST API for a single cloud project.
type Client struct {
	project string
	token   string
	baseURL string
	rest    *fetch.Client
}

// NewClient creates a Client authenticated with a bearer token.
func NewClient(httpClient *http.Client, project, token string) *Client {
	return &Client{
		project: project,
		token:   token,
		baseURL: DefaultBaseURL,
		rest:    fetch.New(httpClient, "earthengine"),
	}
}

// CollectionSize evaluates the number of images in the collection.
func (c *Client) CollectionSize(ctx context.Context, col *ImageCollection) (int, error) {
	raw, err := c.computeValue(ctx, collectionSize(col))
	if err != nil {
		return 0, err
	}

	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("decode collection size: %w", err)
	}
	return n, nil
}

// SampleMean computes the spatial mean of each band of img over geom at the
// given scale in meters. Bands with no unmasked pixels come back nil.
func (c *Client) SampleMean(ctx context.Context, img *Image, geom *Geometry, scaleMeters float64) (map[string]*float64, error) {
	raw, err := c.computeValue(ctx, reduceRegionMean(img, geom, scaleMeters))
	if err != nil {
		return nil, err
	}

	var values map[string]*float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode region reduction: %w", err)
	}
	return values, nil
}

// Thumbnail asks the service to render img over region at the given output
// dimensions and returns a fetchable PNG URL.
func (c *Client) Thumbnail(ctx context.Context, img *Image, region *Geometry, width, height int) (string, error) {
	expr, err := serialize(clipToBoundsAndScale(img, region, width, height))
	if err != nil {
		return "", err
	}

	body := struct {
		Expression *expression `json:"expression"`
		FileFormat string      `json:"fileFormat"`
	}{expr, "PNG"}

	var created struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/projects/%s/thumbnails", c.project)
	if err := c.post(ctx, path, body, &created); err != nil {
		return "", err
	}
	if created.Name == "" {
		return "", fmt.Errorf("thumbnail response missing name")
	}

	return fmt.Sprintf("%s/%s:getPixels", c.baseURL, created.Name), nil
}

// computeValue evaluates a single expression server-side.
func (c *Client) computeValue(ctx context.Context, n *node) (json.RawMessage, error) {
	expr, err := serialize(n)
	if err != nil {
		return nil, err
	}

	body := struct {
		Expression *expression `json:"expression"`
	}{expr}

	var out struct {
		Result json.RawMessage `json:"result"`
	}
	path := fmt.Sprintf("/projects/%s/value:compute", c.project)
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.rest.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

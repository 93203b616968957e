package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hedera-audit/contract-census/entities"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Client reads cursor-paginated result streams from a mirror node REST API.
// One limiter paces all requests, so the courtesy delay holds across both
// streams even though they are collected one after another.
type Client struct {
	baseURL    string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, pageSize, maxPages int, requestDelay, requestTimeout time.Duration) *Client {
	limit := rate.Inf
	if requestDelay > 0 {
		limit = rate.Every(requestDelay)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		pageSize:   pageSize,
		maxPages:   maxPages,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// GetContractResults collects every contract result (inbound call) for the
// given contract within the window, in ascending order.
func (c *Client) GetContractResults(ctx context.Context, contractID string, window entities.ReportingWindow) (*entities.StreamResult, error) {
	requestURL, err := c.streamURL(fmt.Sprintf("/api/v1/contracts/%s/results", contractID), nil, window)
	if err != nil {
		return nil, errors.Wrap(err, "building contract results url")
	}
	return c.collect(ctx, requestURL, decodeContractResultsPage)
}

// GetAccountTransactions collects every transaction (outbound) where the
// given account is the transacting party within the window, in ascending order.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID string, window entities.ReportingWindow) (*entities.StreamResult, error) {
	extra := url.Values{}
	extra.Set("account.id", accountID)
	requestURL, err := c.streamURL("/api/v1/transactions", extra, window)
	if err != nil {
		return nil, errors.Wrap(err, "building transactions url")
	}
	return c.collect(ctx, requestURL, decodeTransactionsPage)
}

type pageDecoder func(body []byte) (items []entities.ActivityRecord, next string, err error)

// collect walks the cursor chain starting at requestURL. A failed or
// malformed page ends the walk early and returns the pages collected so far
// with Truncated set; only an aborted context is an error. An empty page or a
// missing next link is the natural end of the stream.
func (c *Client) collect(ctx context.Context, requestURL string, decode pageDecoder) (*entities.StreamResult, error) {
	result := &entities.StreamResult{}
	for {
		if c.maxPages > 0 && result.Pages >= c.maxPages {
			log.Printf("[WARN] mirror: page ceiling [%d] reached, keeping partial data", c.maxPages)
			result.Truncated = true
			return result, nil
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "waiting for request slot")
		}

		body, status, err := c.getPage(ctx, requestURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(err, "fetching page")
			}
			log.Printf("[WARN] mirror: request failed after [%d] pages, keeping partial data: %v", result.Pages, err)
			result.Truncated = true
			return result, nil
		}
		if status != http.StatusOK {
			log.Printf("[WARN] mirror: got status [%d] after [%d] pages, keeping partial data", status, result.Pages)
			result.Truncated = true
			return result, nil
		}

		items, next, err := decode(body)
		if err != nil {
			log.Printf("[WARN] mirror: malformed page after [%d] pages, keeping partial data: %v", result.Pages, err)
			result.Truncated = true
			return result, nil
		}

		result.Pages++
		if len(items) == 0 {
			return result, nil
		}
		result.Records = append(result.Records, items...)
		log.Printf("Fetched page [%d] with [%d] records (total [%d]).", result.Pages, len(items), len(result.Records))

		if next == "" {
			return result, nil
		}
		requestURL = c.resolveNext(next)
	}
}

func (c *Client) getPage(ctx context.Context, requestURL string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "creating request")
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, errors.Wrap(err, "executing request")
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			log.Printf("[ERROR] mirror: closing response body: %v", err)
		}
	}(response.Body)

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading response body")
	}
	return body, response.StatusCode, nil
}

func (c *Client) streamURL(path string, extra url.Values, window entities.ReportingWindow) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing base url [%s]", c.baseURL)
	}
	params := url.Values{}
	params.Add("timestamp", fmt.Sprintf("gte:%d", window.StartTimestamp))
	params.Add("timestamp", fmt.Sprintf("lt:%d", window.EndTimestamp))
	params.Set("order", "asc")
	params.Set("limit", strconv.Itoa(c.pageSize))
	for key, values := range extra {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	return base.ResolveReference(&url.URL{Path: path, RawQuery: params.Encode()}).String(), nil
}

func (c *Client) resolveNext(next string) string {
	if strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://") {
		return next
	}
	return c.baseURL + next
}

type pageLinks struct {
	Next *string `json:"next"`
}

func (l pageLinks) next() string {
	if l.Next == nil {
		return ""
	}
	return *l.Next
}

func decodeContractResultsPage(body []byte) ([]entities.ActivityRecord, string, error) {
	var page struct {
		Results []entities.ActivityRecord `json:"results"`
		Links   pageLinks                 `json:"links"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", errors.Wrap(err, "decoding contract results page")
	}
	return page.Results, page.Links.next(), nil
}

func decodeTransactionsPage(body []byte) ([]entities.ActivityRecord, string, error) {
	var page struct {
		Transactions []entities.ActivityRecord `json:"transactions"`
		Links        pageLinks                 `json:"links"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", errors.Wrap(err, "decoding transactions page")
	}
	return page.Transactions, page.Links.next(), nil
}

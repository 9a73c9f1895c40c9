package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"longbox/internal/logging"
	"longbox/internal/metadata"
	"longbox/internal/reconcile"
)

const defaultMetronBaseURL = "https://metron.cloud/api"

// errNotFound marks a 4xx answer. Search treats it as a miss rather
// than bubbling ErrUnavailable for a service that is plainly up.
var errNotFound = errors.New("lookup resource not found")

// MetronOptions configures the Metron client.
type MetronOptions struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Retries  int
	Logger   *slog.Logger
}

// Metron speaks the Metron JSON REST API. Transient failures are
// retried with exponential backoff inside the HTTP client; whatever
// still fails after that surfaces as ErrUnavailable.
type Metron struct {
	client   *retryablehttp.Client
	baseURL  string
	username string
	password string
	logger   *slog.Logger
}

// NewMetron builds a Metron client. Zero options get sane defaults.
func NewMetron(opts MetronOptions) *Metron {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultMetronBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = 3
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 1 * time.Second
	client.RetryWaitMax = 15 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &Metron{
		client:   client,
		baseURL:  baseURL,
		username: opts.Username,
		password: opts.Password,
		logger:   logger.With(logging.String(logging.FieldComponent, "lookup.metron")),
	}
}

func (m *Metron) Name() string { return "metron" }

// Search resolves an identity in two hops: series by name, then issue
// by series id and number. Anything other than exactly one candidate at
// either hop is a miss, never a guess.
func (m *Metron) Search(ctx context.Context, id Identity) (*reconcile.Record, error) {
	if id.Empty() {
		return nil, nil
	}

	series, err := m.get(ctx, "/series/", url.Values{"name": {id.Series}})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	candidates := series.Get("results").Array()
	if len(candidates) != 1 {
		m.logger.Debug("series lookup not unique",
			logging.String("series", id.Series),
			logging.Int("candidates", len(candidates)))
		return nil, nil
	}
	seriesID := candidates[0].Get("id").String()

	issues, err := m.get(ctx, "/issue/", url.Values{"series_id": {seriesID}, "number": {id.Number}})
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	matches := issues.Get("results").Array()
	if len(matches) != 1 {
		return nil, nil
	}

	detail, err := m.get(ctx, "/issue/"+matches[0].Get("id").String()+"/", nil)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return metronRecord(detail), nil
}

func (m *Metron) get(ctx context.Context, path string, params url.Values) (gjson.Result, error) {
	endpoint := m.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	if m.username != "" {
		req.SetBasicAuth(m.username, m.password)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// A 4xx means the service answered and has nothing for us; only
	// server errors and transport failures count as unavailable.
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return gjson.Result{}, fmt.Errorf("%w: %s returned %s", errNotFound, path, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: %s returned %s", ErrUnavailable, path, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return gjson.ParseBytes(body), nil
}

func metronRecord(detail gjson.Result) *reconcile.Record {
	rec := &reconcile.Record{
		Publisher: reconcile.Publisher{
			ID:      detail.Get("publisher.id").String(),
			Name:    detail.Get("publisher.name").String(),
			Imprint: detail.Get("imprint.name").String(),
		},
		Series: reconcile.Series{
			ID:        detail.Get("series.id").String(),
			Name:      detail.Get("series.name").String(),
			SortName:  detail.Get("series.sort_name").String(),
			Volume:    int(detail.Get("series.volume").Int()),
			StartYear: int(detail.Get("series.year_began").Int()),
			Format:    reconcile.ParseFormat(detail.Get("series.series_type.name").String()),
			Language:  detail.Get("series.language").String(),
		},
		Issue: reconcile.Issue{
			ID:        detail.Get("id").String(),
			Number:    detail.Get("number").String(),
			Title:     detail.Get("collection_title").String(),
			ISBN:      detail.Get("isbn").String(),
			UPC:       detail.Get("upc").String(),
			PageCount: int(detail.Get("page").Int()),
			Summary:   detail.Get("desc").String(),
		},
	}
	if d, err := metadata.ParseDate(detail.Get("cover_date").String()); err == nil {
		rec.Issue.CoverDate = d
	}
	if d, err := metadata.ParseDate(detail.Get("store_date").String()); err == nil {
		rec.Issue.StoreDate = d
	}
	return rec
}

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/shardfetch/internal/logging"
)

// TokenHeader carries the PULL token on pointer requests.
const TokenHeader = "x-token"

// HTTPGateway speaks the bridge REST protocol.
type HTTPGateway struct {
	endpoint string
	user     string
	password string
	pageSize int
	client   *http.Client
	log      logging.Logger
}

// NewHTTPGateway builds a REST gateway. A nil client gets one with
// opts.Timeout as its request timeout.
func NewHTTPGateway(opts Options, client *http.Client) *HTTPGateway {
	opts.applyDefaults()
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &HTTPGateway{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		user:     opts.User,
		password: opts.Password,
		pageSize: opts.PageSize,
		client:   client,
		log:      opts.Logger.With("gateway", ProtocolHTTP),
	}
}

func (g *HTTPGateway) IssueToken(ctx context.Context, containerID, fileName string) (Token, error) {
	body, err := json.Marshal(map[string]string{"operation": OperationPull})
	if err != nil {
		return Token{}, err
	}

	target := fmt.Sprintf("%s/buckets/%s/tokens", g.endpoint, url.PathEscape(containerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.user != "" {
		req.SetBasicAuth(g.user, HashPassword(g.password))
	}

	var wt wireToken
	if err := g.do(req, &wt); err != nil {
		return Token{}, err
	}

	g.log.Debug(ctx, "token issued", "container_id", containerID, "file", fileName)
	return wt.toToken(containerID)
}

func (g *HTTPGateway) GetPointers(ctx context.Context, containerID, fileName string, token Token) (PointerList, error) {
	fileID := DeriveFileID(containerID, fileName)

	var all PointerList
	for skip := 0; ; {
		target := fmt.Sprintf("%s/buckets/%s/files/%s?skip=%d&limit=%d",
			g.endpoint, url.PathEscape(containerID), url.PathEscape(fileID), skip, g.pageSize)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(TokenHeader, token.Value)

		var page PointerList
		if err := g.do(req, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < g.pageSize {
			break
		}
		skip += len(page)
	}

	g.log.Debug(ctx, "pointers retrieved", "container_id", containerID, "file_id", fileID, "count", len(all))
	return all.normalize()
}

// Close releases idle connections.
func (g *HTTPGateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

func (g *HTTPGateway) do(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	message := resp.Status
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var v struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &v); err == nil && v.Error != "" {
		message = v.Error
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case resp.StatusCode >= 500:
		sentinel = ErrUnavailable
	default:
		return errors.New("bridge: " + strconv.Itoa(resp.StatusCode) + ": " + message)
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

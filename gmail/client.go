package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bassamadnan/lumimail/auth"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	user           = "me"
	requestTimeout = 60 * time.Second
)

// Client talks to the Gmail REST API. Every call carries the current
// bearer token from the TokenProvider; a 401 is refreshed and retried once.
type Client struct {
	srv    *gmail.Service
	tokens auth.TokenProvider
	logger *slog.Logger
	now    func() time.Time
}

// NewClient builds a Gmail client. Extra options are appended after the
// defaults, so tests can point the service at a fake endpoint.
func NewClient(ctx context.Context, tokens auth.TokenProvider, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	all := append([]option.ClientOption{
		option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	}, opts...)
	srv, err := gmail.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{
		srv:    srv,
		tokens: tokens,
		logger: logger.With("component", "gmail"),
		now:    time.Now,
	}, nil
}

// ListMessages returns one page of message IDs matching query.
func (c *Client) ListMessages(ctx context.Context, query string, pageSize int64, pageToken string) (*ListPage, error) {
	return auth.Do(ctx, c.tokens, func(ctx context.Context, token string) (*ListPage, error) {
		call := c.srv.Users.Messages.List(user).MaxResults(pageSize).Context(ctx)
		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		call.Header().Set("Authorization", "Bearer "+token)

		resp, err := call.Do()
		if err != nil {
			return nil, classify(err)
		}
		page := &ListPage{
			IDs:                make([]string, 0, len(resp.Messages)),
			NextPageToken:      resp.NextPageToken,
			ResultSizeEstimate: resp.ResultSizeEstimate,
		}
		for _, m := range resp.Messages {
			if m != nil && m.Id != "" {
				page.IDs = append(page.IDs, m.Id)
			}
		}
		return page, nil
	})
}

// GetMessage fetches one message in full format.
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	return auth.Do(ctx, c.tokens, func(ctx context.Context, token string) (*gmail.Message, error) {
		call := c.srv.Users.Messages.Get(user, id).Format("full").Context(ctx)
		call.Header().Set("Authorization", "Bearer "+token)
		msg, err := call.Do()
		if err != nil {
			return nil, classify(err)
		}
		return msg, nil
	})
}

// FetchEmail retrieves and normalizes one message. It returns nil when the
// message cannot be fetched; callers drop those from their results.
func (c *Client) FetchEmail(ctx context.Context, id string) *Email {
	msg, err := c.GetMessage(ctx, id)
	if err != nil {
		c.logger.Warn("unable to retrieve message", "id", id, "error", err)
		return nil
	}
	if msg.Id == "" {
		msg.Id = id
	}
	email := ParseMessage(msg, c.now())
	return &email
}

// classify maps a 401 from the API onto auth.ErrUnauthorized.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w", auth.ErrUnauthorized, err)
	}
	return err
}

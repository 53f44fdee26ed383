package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/bassamadnan/lumimail/stats"
)

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// listMessages serves GET /api/gmail/messages?section=inbox&pageToken=...
func (s *Server) listMessages(c echo.Context) error {
	name := c.QueryParam("section")
	if name == "" {
		name = string(mailbox.Inbox)
	}
	section, err := mailbox.Parse(name)
	if err != nil {
		return err
	}

	res, err := s.mail.FetchEmails(c.Request().Context(), section, c.QueryParam("pageToken"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type metricsResponse struct {
	stats.Summary
	UnreadPercent  float64 `json:"unreadPercent"`
	StarredPercent float64 `json:"starredPercent"`
	FromCache      bool    `json:"fromCache"`
}

func (s *Server) metrics(c echo.Context) error {
	res, err := s.mail.FetchEmails(c.Request().Context(), mailbox.Metrics, "")
	if err != nil {
		return err
	}
	summary := stats.Summarize(res.Emails, time.Local)
	summary.Complete = res.NextPageToken == ""

	return c.JSON(http.StatusOK, metricsResponse{
		Summary:        summary,
		UnreadPercent:  summary.Percent(summary.Unread),
		StarredPercent: summary.Percent(summary.Starred),
		FromCache:      res.FromCache,
	})
}

func (s *Server) clearCache(c echo.Context) error {
	if err := s.mail.ClearAllCache(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type refreshResponse struct {
	ExpiresIn int64 `json:"expires_in"`
}

// refreshToken forces a token refresh and reports the new lifetime. The
// token itself never leaves the process.
func (s *Server) refreshToken(c echo.Context) error {
	if _, err := s.tokens.Refresh(c.Request().Context()); err != nil {
		return err
	}
	var resp refreshResponse
	if creds, err := s.creds.Load(); err == nil && !creds.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(creds.Expiry).Seconds())
	}
	return c.JSON(http.StatusOK, resp)
}

// Package spark is an extract.Provider for the iFlytek Spark chat API over websocket.
package spark

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Status of the final frame of an answer.
const statusLast = 2

// Config configures the client.
type Config struct {
	URL         string
	AppID       string
	APIKey      string
	APISecret   string
	Domain      string
	Temperature float64
	TopK        int
	MaxTokens   int
}

// Client sends one question per websocket connection.
type Client struct {
	cfg    Config
	dialer websocket.Dialer
	now    func() time.Time
}

// New validates cfg and builds a client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("spark: empty URL")
	}
	if cfg.AppID == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("spark: app id, api key and api secret are required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("spark: invalid URL: %w", err)
	}
	return &Client{
		cfg: cfg,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		now: time.Now,
	}, nil
}

// SignURL returns the endpoint with the HMAC-SHA256 authorization query the
// API expects, signed for the given time.
func (c *Client) SignURL(now time.Time) (string, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("spark: invalid URL: %w", err)
	}
	date := now.UTC().Format(http.TimeFormat)
	origin := "host: " + u.Host + "\n" +
		"date: " + date + "\n" +
		"GET " + u.Path + " HTTP/1.1"

	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authorization := fmt.Sprintf(`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		c.cfg.APIKey, signature)

	q := url.Values{}
	q.Set("authorization", base64.StdEncoding.EncodeToString([]byte(authorization)))
	q.Set("date", date)
	q.Set("host", u.Host)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Header struct {
		AppID string `json:"app_id"`
	} `json:"header"`
	Parameter struct {
		Chat struct {
			Domain      string  `json:"domain"`
			Temperature float64 `json:"temperature"`
			TopK        int     `json:"top_k"`
			MaxTokens   int     `json:"max_tokens"`
		} `json:"chat"`
	} `json:"parameter"`
	Payload struct {
		Message struct {
			Text []message `json:"text"`
		} `json:"message"`
	} `json:"payload"`
}

type frame struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		SID     string `json:"sid"`
	} `json:"header"`
	Payload struct {
		Choices struct {
			Status int `json:"status"`
			Text   []struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
}

func (c *Client) newRequest(system, user string) request {
	var req request
	req.Header.AppID = c.cfg.AppID
	req.Parameter.Chat.Domain = c.cfg.Domain
	req.Parameter.Chat.Temperature = c.cfg.Temperature
	req.Parameter.Chat.TopK = c.cfg.TopK
	req.Parameter.Chat.MaxTokens = c.cfg.MaxTokens
	req.Payload.Message.Text = []message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	return req
}

// Complete sends system and user and returns the streamed answer.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	endpoint, err := c.SignURL(c.now())
	if err != nil {
		return "", err
	}
	conn, resp, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("spark: dial: %s (HTTP %d): %w", http.StatusText(resp.StatusCode), resp.StatusCode, err)
		}
		return "", fmt.Errorf("spark: dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	if err := conn.WriteJSON(c.newRequest(system, user)); err != nil {
		return "", fmt.Errorf("spark: send: %w", err)
	}

	var answer strings.Builder
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", fmt.Errorf("spark: read: %w", err)
		}
		if f.Header.Code != 0 {
			return "", fmt.Errorf("spark: api error %d: %s (sid %s)", f.Header.Code, f.Header.Message, f.Header.SID)
		}
		for _, t := range f.Payload.Choices.Text {
			answer.WriteString(t.Content)
		}
		if f.Payload.Choices.Status == statusLast {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return answer.String(), nil
		}
	}
}

// Package gpt is an extract.Provider backed by the OpenAI Responses API.
package gpt

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// Client sends one system+user exchange per call.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
}

// New builds a client for model. An empty baseURL uses the SDK default; an
// empty apiKey falls back to OPENAI_API_KEY.
func New(apiKey, baseURL, model string, temperature float64, opts ...option.RequestOption) *Client {
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	client := openai.NewClient(opts...)
	return &Client{client: &client, model: model, temperature: temperature}
}

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.client == nil {
		return "", errors.New("nil openai client")
	}
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(system),
		Temperature:  openai.Float(c.temperature),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: user,
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

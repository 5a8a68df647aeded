package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Client of the image generation API
type Client struct {
	config     *config.Ai
	log        *logrus.Entry
	httpClient *resty.Client
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		Url string `json:"url"`
	} `json:"data"`
}

type apiErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(config *config.Ai) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("ai-client")

	self.httpClient = resty.New().
		SetBaseURL(config.Url).
		SetAuthToken(config.ApiKey).
		SetTimeout(config.RequestTimeout)

	return
}

// Asks the generation service for one image. The returned error is classified
// so that callers can decide between retrying, falling back and giving up.
func (self *Client) Generate(ctx context.Context, prompt string) (imageUrl string, err error) {
	var result generationResponse
	var apiError apiErrorResponse

	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(&generationRequest{
			Model:  self.config.Model,
			Prompt: prompt,
			N:      1,
			Size:   self.config.ImageSize,
		}).
		SetResult(&result).
		SetError(&apiError).
		Post("/v1/images/generations")
	if err != nil {
		// Didn't reach the service at all
		err = errs.Transient(err)
		return
	}

	if resp.IsSuccess() {
		if len(result.Data) == 0 || result.Data[0].Url == "" {
			err = errs.Permanent(errors.New("generation response contains no image"))
			return
		}
		imageUrl = result.Data[0].Url
		return
	}

	err = self.classify(resp.StatusCode(), &apiError)
	return
}

func (self *Client) classify(statusCode int, apiError *apiErrorResponse) error {
	err := errors.New(apiError.Error.Message)
	if apiError.Error.Message == "" {
		err = errors.New(http.StatusText(statusCode))
	}

	switch {
	case statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError:
		return errs.Transient(err)
	case apiError.Error.Code == "content_policy_violation" || apiError.Error.Type == "content_policy":
		return errs.ContentPolicy(err)
	default:
		return errs.Permanent(err)
	}
}

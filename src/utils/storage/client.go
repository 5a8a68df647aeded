package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Client of the IPFS pinning service
type Client struct {
	config     *config.Storage
	log        *logrus.Entry
	httpClient *resty.Client
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type pinJSONRequest struct {
	PinataContent  interface{}     `json:"pinataContent"`
	PinataMetadata pinFileMetadata `json:"pinataMetadata"`
}

type pinFileMetadata struct {
	Name string `json:"name"`
}

func NewClient(config *config.Storage) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("storage-client")

	self.httpClient = resty.New().
		SetBaseURL(config.Url).
		SetAuthToken(config.ApiKey).
		SetTimeout(config.RequestTimeout)

	return
}

// Pins raw bytes and returns their content id
func (self *Client) UploadBytes(ctx context.Context, name string, data []byte) (cid string, err error) {
	var result pinResponse

	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetResult(&result).
		Post("/pinning/pinFileToIPFS")

	return self.handle(resp, err, &result)
}

// Pins an object serialized as JSON and returns its content id
func (self *Client) UploadJSON(ctx context.Context, name string, content interface{}) (cid string, err error) {
	var result pinResponse

	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(&pinJSONRequest{
			PinataContent:  content,
			PinataMetadata: pinFileMetadata{Name: name},
		}).
		SetResult(&result).
		Post("/pinning/pinJSONToIPFS")

	return self.handle(resp, err, &result)
}

func (self *Client) handle(resp *resty.Response, err error, result *pinResponse) (string, error) {
	if err != nil {
		// Didn't reach the service at all
		return "", errs.Transient(err)
	}

	if !resp.IsSuccess() {
		err = fmt.Errorf("pinning service responded with %s", resp.Status())
		if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError {
			return "", errs.Transient(err)
		}
		return "", errs.Permanent(err)
	}

	if result.IpfsHash == "" {
		return "", errs.Permanent(errors.New("pinning service returned no content id"))
	}

	return result.IpfsHash, nil
}

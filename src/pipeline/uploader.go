package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/mintforge/revealer/src/utils/config"
	"github.com/mintforge/revealer/src/utils/errs"
	"github.com/mintforge/revealer/src/utils/model"
	"github.com/mintforge/revealer/src/utils/monitoring"
	"github.com/mintforge/revealer/src/utils/task"

	"github.com/go-resty/resty/v2"
)

type UploaderStore interface {
	ClaimUploading(ctx context.Context, limit int) ([]model.Token, error)
	FailExhaustedUploads(ctx context.Context) (int64, error)
	BumpUploadAttempts(ctx context.Context, tokenId int64) error
	TokenUploaded(ctx context.Context, tokenId int64, imageCid, metadataCid string) error
	TokenFailed(ctx context.Context, tokenId int64, message string) error
}

type StorageUploader interface {
	UploadBytes(ctx context.Context, name string, data []byte) (string, error)
	UploadJSON(ctx context.Context, name string, content interface{}) (string, error)
}

// Downloads the generated image from its temporary host, pins it together
// with the metadata document and moves the token to ready.
type Uploader struct {
	*task.Task

	store      UploaderStore
	storage    StorageUploader
	monitor    monitoring.Monitor
	httpClient *resty.Client
}

func NewUploader(config *config.Config) (self *Uploader) {
	self = new(Uploader)

	self.httpClient = resty.New().
		SetTimeout(config.Uploader.DownloadTimeout)

	self.Task = task.NewTask(config, "uploader").
		WithRepeatedSubtaskFunc(config.Uploader.PollInterval, self.handleNew).
		WithWorkerPool(config.Uploader.NumWorkers)

	return
}

func (self *Uploader) WithStore(store UploaderStore) *Uploader {
	self.store = store
	return self
}

func (self *Uploader) WithStorage(storage StorageUploader) *Uploader {
	self.storage = storage
	return self
}

func (self *Uploader) WithMonitor(monitor monitoring.Monitor) *Uploader {
	self.monitor = monitor
	return self
}

func (self *Uploader) handleNew() (repeat bool, err error) {
	ctx := context.Background()

	failed, err := self.store.FailExhaustedUploads(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to fail exhausted tokens")
		self.monitor.GetReport().Pipeline.Errors.UploaderDbFailures.Inc()
		return
	}
	if failed > 0 {
		self.Log.WithField("count", failed).Warn("Tokens ran out of upload attempts")
		self.monitor.GetReport().Pipeline.State.UploaderTokensFailed.Add(failed)
	}

	tokens, err := self.store.ClaimUploading(ctx, self.Config.Uploader.BatchSize)
	if err != nil {
		self.Log.WithError(err).Error("Failed to claim tokens for upload")
		self.monitor.GetReport().Pipeline.Errors.UploaderClaimFailures.Inc()
		err = nil
		return
	}
	if len(tokens) == 0 {
		return
	}

	self.monitor.GetReport().Pipeline.State.UploaderTokensClaimed.Add(int64(len(tokens)))

	var wg sync.WaitGroup
	wg.Add(len(tokens))
	for _, token := range tokens {
		token := token
		self.SubmitToWorker(func() {
			defer wg.Done()
			self.upload(ctx, &token)
		})
	}
	wg.Wait()

	repeat = len(tokens) == self.Config.Uploader.BatchSize
	return
}

func (self *Uploader) upload(ctx context.Context, token *model.Token) {
	log := self.Log.WithField("token_id", token.TokenId)

	if !token.ImageUrl.Valid {
		// Shouldn't happen, the generator always sets the url before the flip
		self.fail(ctx, token, "token has no image url")
		return
	}

	err := self.store.BumpUploadAttempts(ctx, token.TokenId)
	if err != nil {
		log.WithError(err).Error("Failed to bump upload attempts")
		self.monitor.GetReport().Pipeline.Errors.UploaderDbFailures.Inc()
		return
	}
	token.UploadAttempts++

	data, err := self.download(ctx, token.ImageUrl.String)
	if err == nil {
		var imageCid string
		imageCid, err = self.storage.UploadBytes(ctx, fmt.Sprintf("token-%d.png", token.TokenId), data)
		if err == nil {
			var metadataCid string
			metadataCid, err = self.storage.UploadJSON(ctx,
				fmt.Sprintf("token-%d.json", token.TokenId),
				NewTokenMetadata(token.TokenId, imageCid))
			if err == nil {
				err = self.store.TokenUploaded(ctx, token.TokenId, imageCid, metadataCid)
				if err != nil {
					log.WithError(err).Error("Failed to save pinned CIDs")
					self.monitor.GetReport().Pipeline.Errors.UploaderDbFailures.Inc()
					return
				}
				self.monitor.GetReport().Pipeline.State.UploaderTokensUploaded.Inc()
				return
			}
		}
	}

	if errs.IsTransient(err) {
		log.WithError(err).Warn("Transient upload failure")
		self.monitor.GetReport().Pipeline.Errors.UploaderTransientRetries.Inc()

		if self.Config.Uploader.MaxAttempts > 0 && token.UploadAttempts >= self.Config.Uploader.MaxAttempts {
			self.fail(ctx, token, err.Error())
		}
		return
	}

	self.fail(ctx, token, err.Error())
}

// Generated image urls expire, a 404 from the host is permanent
func (self *Uploader) download(ctx context.Context, url string) (data []byte, err error) {
	resp, err := self.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, errs.Transient(err)
	}
	if !resp.IsSuccess() {
		err = fmt.Errorf("image download failed with status %d", resp.StatusCode())
		if resp.StatusCode() == 429 || resp.StatusCode() >= 500 {
			return nil, errs.Transient(err)
		}
		return nil, errs.Permanent(err)
	}
	return resp.Body(), nil
}

func (self *Uploader) fail(ctx context.Context, token *model.Token, message string) {
	log := self.Log.WithField("token_id", token.TokenId)
	log.WithField("reason", message).Error("Token upload failed permanently")

	err := self.store.TokenFailed(ctx, token.TokenId, message)
	if err != nil {
		log.WithError(err).Error("Failed to mark token as failed")
		self.monitor.GetReport().Pipeline.Errors.UploaderDbFailures.Inc()
		return
	}

	self.monitor.GetReport().Pipeline.Errors.UploaderPermanentFailures.Inc()
	self.monitor.GetReport().Pipeline.State.UploaderTokensFailed.Inc()
}

package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/reusedev/cutout-hub/internal/modules/ai"
	"github.com/reusedev/cutout-hub/internal/modules/cache"
	"github.com/reusedev/cutout-hub/internal/modules/logs"
	"github.com/reusedev/cutout-hub/internal/modules/pdf"
	"github.com/reusedev/cutout-hub/internal/modules/queue"
	"github.com/reusedev/cutout-hub/internal/modules/remover"
)

// Uploader stores outputs when storage is enabled. ali.OssClient satisfies it.
type Uploader interface {
	UploadResult(ctx context.Context, b []byte) (string, error)
	URL(ctx context.Context, key string, expire time.Duration) (string, error)
}

type Deps struct {
	Orchestrator *remover.Orchestrator
	Batcher      *remover.Batcher
	Compositor   *remover.Compositor
	Compressor   *pdf.Compressor
	Bans         *ai.BanList
	Queue        queue.TaskQueue
	Tasks        *cache.Manager[string]
	TaskTTL      time.Duration
	MaxInputSize int64
	MaxPDFSize   int64
	// Uploader is nil when storage is disabled.
	Uploader       Uploader
	URLExpires     time.Duration
	HistoryEnabled bool
}

var deps Deps

func Setup(d Deps) {
	deps = d
}

// readFile reads at most limit+1 bytes so oversized uploads still reach the size check.
func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if limit <= 0 {
		return io.ReadAll(f)
	}
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// store uploads b and returns a presigned url, or "" when storage is disabled or fails.
func store(ctx context.Context, b []byte) string {
	if deps.Uploader == nil || len(b) == 0 {
		return ""
	}
	key, err := deps.Uploader.UploadResult(ctx, b)
	if err != nil {
		logs.Logger.Err(err).Msg("upload result failed")
		return ""
	}
	url, err := deps.Uploader.URL(ctx, key, deps.URLExpires)
	if err != nil {
		logs.Logger.Err(err).Str("key", key).Msg("presign result failed")
		return ""
	}
	return url
}

func cacheKey(taskID string) string {
	return fmt.Sprintf("batch_task_%s", taskID)
}

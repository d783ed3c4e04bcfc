package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teamline/teamline/internal/config"
	"github.com/teamline/teamline/pkg/uploader"
)

func TestBatchMessage(t *testing.T) {
	cfg := config.UploadConfig{MaxFiles: 5, MaxFileSize: 50 * 1024 * 1024}

	t.Run("all accepted", func(t *testing.T) {
		res := uploader.BatchResult{Accepted: []uploader.File{{Name: "a.txt"}}}
		assert.Empty(t, batchMessage(res, cfg))
	})

	t.Run("over quota", func(t *testing.T) {
		res := uploader.BatchResult{RejectedOverQuota: 3}
		assert.Equal(t,
			"Uploads limited to 5 files maximum. Please use additional posts for more files.",
			batchMessage(res, cfg))
	})

	t.Run("one too large", func(t *testing.T) {
		res := uploader.BatchResult{RejectedTooLarge: []uploader.File{{Name: "big.iso"}}}
		assert.Equal(t, "File above 50MB could not be uploaded: big.iso", batchMessage(res, cfg))
	})

	t.Run("several too large", func(t *testing.T) {
		res := uploader.BatchResult{RejectedTooLarge: []uploader.File{{Name: "big.iso"}, {Name: "huge.bin"}}}
		assert.Equal(t, "Files above 50MB could not be uploaded: big.iso, huge.bin", batchMessage(res, cfg))
	})

	t.Run("both", func(t *testing.T) {
		res := uploader.BatchResult{
			RejectedTooLarge:  []uploader.File{{Name: "big.iso"}},
			RejectedOverQuota: 2,
		}
		assert.Equal(t,
			"Uploads limited to 5 files maximum. Please use additional posts for more files. "+
				"File above 50MB could not be uploaded: big.iso",
			batchMessage(res, cfg))
	})
}

package http

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/infrastructure/storage"
)

// AssetController serves stored assets straight off the local backend's
// filesystem. Only mounted when the local backend is active; object storage
// backends serve assets from their own origin.
type AssetController struct {
	backend       *storage.LocalBackend
	allowedOrigin string
}

func NewAssetController(backend *storage.LocalBackend, allowedOrigin string) *AssetController {
	return &AssetController{
		backend:       backend,
		allowedOrigin: allowedOrigin,
	}
}

// ServeAsset handles every path below /backend/storage/videos/:video_id/.
// A single wildcard route dispatches internally on the first path segment;
// rendition files, subtitles, thumbnails and poster frames all land here.
func (c *AssetController) ServeAsset(ctx *gin.Context) {
	videoID := ctx.Param("video_id")
	rest := strings.TrimPrefix(ctx.Param("rest"), "/")
	if videoID == "" || rest == "" {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}

	abs, err := c.backend.ResolveAsset(path.Join("videos", videoID, rest))
	if err != nil {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}

	// Subtitle, thumbnail and poster fetches come from player pages on other
	// origins; rendition files are fetched same-origin by the video element.
	switch {
	case strings.HasPrefix(rest, "subs/"), strings.HasPrefix(rest, "thumbs/"), strings.HasPrefix(rest, "poster/"):
		ctx.Header("Access-Control-Allow-Origin", c.allowedOrigin)
	}
	if strings.HasSuffix(rest, ".vtt") {
		ctx.Header("Content-Type", "text/vtt; charset=utf-8")
	}

	ctx.File(abs)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/application/app"
)

// Router wires the application services into the gin engine.
type Router struct {
	uploadApp   app.UploadApp
	videoApp    app.VideoApp
	subtitleApp app.SubtitleApp
	playlistApp app.PlaylistApp
	assets      *AssetController
}

// NewRouter creates the route configuration. assets may be nil when the
// active storage backend serves its own files.
func NewRouter(
	uploadApp app.UploadApp,
	videoApp app.VideoApp,
	subtitleApp app.SubtitleApp,
	playlistApp app.PlaylistApp,
	assets *AssetController,
) *Router {
	return &Router{
		uploadApp:   uploadApp,
		videoApp:    videoApp,
		subtitleApp: subtitleApp,
		playlistApp: playlistApp,
		assets:      assets,
	}
}

// SetupRoutes registers all routes on the engine.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	uploadController := NewUploadController(r.uploadApp)
	videoController := NewVideoController(r.videoApp, r.subtitleApp)
	playlistController := NewPlaylistController(r.playlistApp)

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	{
		videos := v1.Group("/videos")
		{
			videos.GET("", videoController.ListVideos)
			videos.POST("/upload-urls", uploadController.CreateUploadURL)

			videos.GET("/:video_id", videoController.GetVideo)
			videos.DELETE("/:video_id", videoController.DeleteVideo)
			videos.POST("/:video_id/restart", videoController.RestartProcessing)

			videos.POST("/:video_id/upload", uploadController.CompleteUpload)
			videos.GET("/:video_id/upload", uploadController.CheckUpload)

			videos.POST("/:video_id/subtitles", videoController.UploadSubtitle)
			videos.DELETE("/:video_id/subtitles/:subtitle_id", videoController.DeleteSubtitle)
		}

		playlists := v1.Group("/playlists")
		{
			playlists.POST("", playlistController.CreatePlaylist)
			playlists.GET("/:playlist_id", playlistController.GetPlaylist)
			playlists.POST("/:playlist_id/videos/:video_id", playlistController.AddVideo)
			playlists.DELETE("/:playlist_id/videos/:video_id", playlistController.RemoveVideo)
		}
	}

	if r.assets != nil {
		// One wildcard route: the controller dispatches on the remainder, so
		// rendition, subtitle, thumbnail and poster paths never need sibling
		// routes that gin would reject.
		engine.GET("/backend/storage/videos/:video_id/*rest", r.assets.ServeAsset)
	}
}

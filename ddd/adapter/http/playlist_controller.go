package http

import (
	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/pkg/restapi"
)

// PlaylistController exposes playlist management.
type PlaylistController struct {
	playlistApp app.PlaylistApp
}

func NewPlaylistController(playlistApp app.PlaylistApp) *PlaylistController {
	return &PlaylistController{playlistApp: playlistApp}
}

// CreatePlaylist creates a named playlist.
func (c *PlaylistController) CreatePlaylist(ctx *gin.Context) {
	var req cqe.CreatePlaylistCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	resp, err := c.playlistApp.CreatePlaylist(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// GetPlaylist returns a playlist with its videos.
func (c *PlaylistController) GetPlaylist(ctx *gin.Context) {
	resp, err := c.playlistApp.GetPlaylist(ctx.Request.Context(), ctx.Param("playlist_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// AddVideo attaches a video to a playlist. Adding twice is a no-op.
func (c *PlaylistController) AddVideo(ctx *gin.Context) {
	err := c.playlistApp.AddVideo(ctx.Request.Context(), ctx.Param("playlist_id"), ctx.Param("video_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"message": "Video added to playlist"})
}

// RemoveVideo detaches a video from a playlist.
func (c *PlaylistController) RemoveVideo(ctx *gin.Context) {
	err := c.playlistApp.RemoveVideo(ctx.Request.Context(), ctx.Param("playlist_id"), ctx.Param("video_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"message": "Video removed from playlist"})
}

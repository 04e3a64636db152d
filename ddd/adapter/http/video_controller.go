package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/pkg/errno"
	"video-pipeline-service/pkg/restapi"
)

// VideoController exposes the public video surface: lookups, deletion,
// pipeline restarts and subtitle tracks.
type VideoController struct {
	videoApp    app.VideoApp
	subtitleApp app.SubtitleApp
}

func NewVideoController(videoApp app.VideoApp, subtitleApp app.SubtitleApp) *VideoController {
	return &VideoController{
		videoApp:    videoApp,
		subtitleApp: subtitleApp,
	}
}

// GetVideo returns the public representation of one video.
func (c *VideoController) GetVideo(ctx *gin.Context) {
	resp, err := c.videoApp.GetVideo(ctx.Request.Context(), ctx.Param("video_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// ListVideos returns the owner's videos, newest first.
func (c *VideoController) ListVideos(ctx *gin.Context) {
	ownerID, err := strconv.ParseUint(ctx.Query("owner_id"), 10, 64)
	if err != nil || ownerID == 0 {
		restapi.Failed(ctx, errno.ErrInvalidParam)
		return
	}

	resp, err := c.videoApp.ListVideos(ctx.Request.Context(), uint(ownerID))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"videos": resp})
}

// DeleteVideo removes the video record and all its stored assets.
func (c *VideoController) DeleteVideo(ctx *gin.Context) {
	if err := c.videoApp.DeleteVideo(ctx.Request.Context(), ctx.Param("video_id")); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"message": "Video deleted"})
}

// RestartProcessing queues a failed video for another pipeline run.
func (c *VideoController) RestartProcessing(ctx *gin.Context) {
	if err := c.videoApp.RestartProcessing(ctx.Request.Context(), ctx.Param("video_id")); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"message": "Processing restarted"})
}

// UploadSubtitle attaches a subtitle track to a video.
func (c *VideoController) UploadSubtitle(ctx *gin.Context) {
	var req cqe.UploadSubtitleCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.VideoID = ctx.Param("video_id")

	resp, err := c.subtitleApp.UploadSubtitle(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// DeleteSubtitle removes one subtitle track and its stored files.
func (c *VideoController) DeleteSubtitle(ctx *gin.Context) {
	err := c.subtitleApp.DeleteSubtitle(ctx.Request.Context(), ctx.Param("video_id"), ctx.Param("subtitle_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"message": "Subtitle deleted"})
}

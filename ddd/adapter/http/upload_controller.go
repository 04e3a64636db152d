package http

import (
	"github.com/gin-gonic/gin"

	"video-pipeline-service/ddd/application/app"
	"video-pipeline-service/ddd/application/cqe"
	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/pkg/restapi"
)

// UploadController exposes the upload ticket lifecycle: issue a ticket,
// push the source file against it, poll until the video record appears.
type UploadController struct {
	uploadApp app.UploadApp
}

func NewUploadController(uploadApp app.UploadApp) *UploadController {
	return &UploadController{uploadApp: uploadApp}
}

// CreateUploadURL issues a ticket pre-allocating a video id.
func (c *UploadController) CreateUploadURL(ctx *gin.Context) {
	var req cqe.CreateUploadURLCqe
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	resp, err := c.uploadApp.CreateUploadURL(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// CompleteUpload receives the source file as multipart form data under the
// "file" field and claims the ticket named in the path.
func (c *UploadController) CompleteUpload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		restapi.Failed(ctx, &gateway.ValidationError{Field: "file", Reason: "missing multipart file field"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	defer src.Close()

	req := cqe.CompleteUploadCqe{
		VideoID:  ctx.Param("video_id"),
		Filename: fileHeader.Filename,
	}
	resp, err := c.uploadApp.CompleteUpload(ctx.Request.Context(), &req, src)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, resp)
}

// CheckUpload reports whether the ticket's video record exists yet. Clients
// poll this after pushing the file.
func (c *UploadController) CheckUpload(ctx *gin.Context) {
	done, err := c.uploadApp.CheckUpload(ctx.Request.Context(), ctx.Param("video_id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}

	restapi.Success(ctx, gin.H{"uploaded": done})
}

package errno

// code=0 success
// code=4xx client errors
// code=5xx server errors
// code=2xxxx pipeline errors

type Errno struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Errno) Error() string {
	return e.Message
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrInvalidParam = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrDatabase       = &Errno{Code: 501, Message: "Database error"}

	// Pipeline error codes.
	ErrVideoNotFound        = &Errno{Code: 20001, Message: "Video not found"}
	ErrUploadUrlNotFound    = &Errno{Code: 20002, Message: "Upload url not found"}
	ErrUploadUrlExpired     = &Errno{Code: 20003, Message: "Upload url has expired"}
	ErrUploadUrlUsed        = &Errno{Code: 20004, Message: "Upload url was already used"}
	ErrInvalidLanguageCode  = &Errno{Code: 20005, Message: "Invalid subtitle language code"}
	ErrSubtitleNotFound     = &Errno{Code: 20006, Message: "Subtitle not found"}
	ErrSourceMissing        = &Errno{Code: 20007, Message: "No uploaded source for this video"}
	ErrProcessingInProgress = &Errno{Code: 20008, Message: "Video is still processing"}
	ErrQueueFull            = &Errno{Code: 20009, Message: "Encode queue is full"}
	ErrPlaylistNotFound     = &Errno{Code: 20010, Message: "Playlist not found"}
)

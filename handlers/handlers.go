package handlers

import (
	"circle/events"
	"circle/models"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// FailedFile is reported for every file of a multi-file upload that was not stored
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type MultiResponse struct {
	Status   string             `json:"status"`
	Message  string             `json:"message"`
	Uploaded []models.MediaInfo `json:"uploaded"`
	Failed   []FailedFile       `json:"failed"`
}

var (
	// Predefined responses
	OKResponse          = Response{Status: statusSuccess}
	BadIDResponse       = Response{statusError, "Invalid ID"}
	BadRequestResponse  = Response{statusError, "Invalid request data"}
	NotFoundResponse    = Response{statusError, "Not found"}
	MemoryNotFound      = Response{statusError, "Memory not found"}
	MediaNotFound       = Response{statusError, "Media not found"}
	FileNotFound        = Response{statusError, "File not found"}
	NoQueryResponse     = Response{statusError, "No query provided"}
	NoStorageResponse   = Response{statusError, "No storage configured"}
	DBErrorResponse     = Response{statusError, "Database error"}
	StorageErrResponse  = Response{statusError, "Storage error"}
	TextRequired        = Response{statusError, "Memory text is required"}
	PDFFailedResponse   = Response{statusError, "Failed to generate PDF"}
	NoChaptersResponse  = Response{statusError, "No biography chapters found"}
	BadChaptersResponse = Response{statusError, "Invalid chapters data"}
)

func errorResponse(message string) Response {
	return Response{statusError, message}
}

func successResponse(message string) Response {
	return Response{statusSuccess, message}
}

// idParam reads a numeric path parameter, answering 400 when it isn't one
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, BadIDResponse)
		return 0, false
	}
	return id, true
}

// dbError answers 404 for missing (or foreign) records and 500 otherwise
func dbError(c *gin.Context, err error, notFound Response) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, notFound)
		return
	}
	zap.S().Errorf("DB error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, DBErrorResponse)
}

func publish(user *models.User, eventType, action string, id, memoryID uint64) {
	events.Publish(user.ID, events.Event{
		Type:     eventType,
		Action:   action,
		ID:       id,
		MemoryID: memoryID,
	})
}

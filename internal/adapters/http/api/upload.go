package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/cvscreen/internal/extract/textextract"
	"github.com/okian/cvscreen/pkg/metrics"
)

const (
	multipartOverhead = 1 << 20
	// inflationFactor bounds how far a compressed upload may expand.
	inflationFactor = 4
)

// UploadHandler extracts text from uploaded CV files.
type UploadHandler struct {
	maxMB   int
	allowed []string
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(st Settings) *UploadHandler {
	return &UploadHandler{maxMB: st.MaxFileSizeMB, allowed: st.AllowedFileTypes}
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	FileID      string `json:"file_id"`
	FileContent string `json:"file_content"`
}

// HandleUpload handles multipart POST /api/upload requests with a "file" part.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	limit := int64(h.maxMB) << 20
	if h.maxMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	defer file.Close()

	fileType := textextract.FileType(header.Filename)
	if err := textextract.ValidateType(header.Filename, h.allowed); err != nil {
		metrics.RecordUpload(fileType, "rejected")
		writeFailure(w, Wrap(op, err))
		return
	}
	var reader io.Reader = file
	if h.maxMB > 0 {
		reader = io.LimitReader(file, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		metrics.RecordUpload(fileType, "error")
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := textextract.ValidateSize(data, h.maxMB); err != nil {
		metrics.RecordUpload(fileType, "rejected")
		writeFailure(w, Wrap(op, err))
		return
	}
	text, err := textextract.Extract(header.Filename, data, textextract.WithMaxExpandedMB(h.maxMB*inflationFactor))
	if err != nil {
		metrics.RecordUpload(fileType, "error")
		metrics.RecordExtractionFailure(fileType)
		writeFailure(w, Wrap(op, err))
		return
	}

	metrics.RecordUpload(fileType, "success")
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:     true,
		Message:     fmt.Sprintf("File %s processed successfully", header.Filename),
		FileID:      uuid.NewString(),
		FileContent: text,
	})
}

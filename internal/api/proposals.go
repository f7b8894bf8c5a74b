package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"devwise/internal/domain/proposal"
	"devwise/internal/metrics"
	"devwise/pkg/errors"
)

// handleExtract runs line-item extraction for an uploaded proposal.
// POST /api/proposals/{id}/extract
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	proposalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid proposal id"))
		return
	}

	result, rl, err := s.extraction.Run(r.Context(), userID, proposalID)
	setRateLimitHeaders(w, rl)
	if err != nil {
		writeError(w, err)
		return
	}

	cost, _ := result.Cost.Float64()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"line_item_count": result.LineItemCount,
		"total_amount":    result.TotalAmount,
		"party_id":        result.PartyID,
		"tokens_used":     result.TokensUsed,
		"cost_usd":        cost,
	})
}

// fileTypeForName maps an upload's extension to a supported document type
func fileTypeForName(name string) (proposal.FileType, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return proposal.FileTypePDF, nil
	case ".xlsx", ".xls":
		return proposal.FileTypeExcel, nil
	default:
		return "", errors.Wrap(errors.ErrInvalidInput,
			"unsupported file type, expected PDF or Excel")
	}
}

// handleUpload accepts a proposal document and queues it for extraction.
// POST /api/proposals/upload
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, err := s.identity.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rl, err := s.limiter.Allow(r.Context(), fmt.Sprintf("upload:%s", userID),
		s.rateLimits.UploadsPerHour, time.Hour)
	if err != nil {
		writeError(w, errors.Wrap(err, "rate limit check failed"))
		return
	}
	setRateLimitHeaders(w, rl)
	if !rl.Allowed {
		metrics.RateLimitDenials.WithLabelValues("upload").Inc()
		writeError(w, errors.Wrap(errors.ErrRateLimited,
			"too many uploads, please try again later"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "file exceeds upload size limit"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	projectID, err := uuid.Parse(r.FormValue("project_id"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "project_id is required"))
		return
	}

	contractorName := strings.TrimSpace(r.FormValue("contractor_name"))
	if contractorName == "" {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "contractor_name is required"))
		return
	}

	fileType, err := fileTypeForName(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	// Ownership check before touching storage
	if _, err := s.projects.GetByIDForUser(r.Context(), projectID, userID); err != nil {
		writeError(w, err)
		return
	}

	path, err := s.documents.Save(r.Context(), userID.String(), header.Filename, file)
	if err != nil {
		writeError(w, errors.Wrap(err, "failed to store document"))
		return
	}

	now := time.Now()
	fileName := header.Filename
	prop := &proposal.Proposal{
		ID:               uuid.New(),
		ProjectID:        projectID,
		UserID:           userID,
		ContractorName:   contractorName,
		FileName:         &fileName,
		FilePath:         &path,
		FileType:         &fileType,
		ExtractionStatus: proposal.ExtractionPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.proposals.Create(r.Context(), prop); err != nil {
		// Orphaned blobs are worse than a retried upload
		_ = s.documents.Delete(r.Context(), path)
		writeError(w, errors.Wrap(err, "failed to create proposal"))
		return
	}

	s.log.Infow("Proposal uploaded",
		"proposal_id", prop.ID,
		"project_id", projectID,
		"file_type", fileType,
		"size_bytes", header.Size,
	)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"proposal_id":       prop.ID,
		"file_name":         fileName,
		"file_type":         fileType,
		"extraction_status": prop.ExtractionStatus,
	})
}

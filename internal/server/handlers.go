package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taxlens/taxdoc/constants"
	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/normalize"
	"github.com/taxlens/taxdoc/internal/pipeline"
	"github.com/taxlens/taxdoc/internal/repository"
)

// documentResponse is the success body for POST /v1/documents.
type documentResponse struct {
	Filename string                     `json:"filename"`
	OCRText  string                     `json:"ocr_text"`
	Record   normalize.StructuredRecord `json:"record"`
	Degraded []string                   `json:"degraded,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_INPUT",
			Message: "multipart field 'file' is required",
		})
		return
	}

	// the extension gate runs before any bytes are read: an unsupported
	// format is rejected with the accepted list, not silently degraded
	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if _, allowed := constants.AllowedExtensions[ext]; !allowed {
		if _, declared := constants.SupportedMediaTypes[fh.Header.Get("Content-Type")]; !declared {
			c.JSON(http.StatusUnsupportedMediaType, errorResponse{
				Code:    "UNSUPPORTED_MEDIA",
				Message: "unsupported document type; accepted: " + constants.SupportedMediaTypesList(),
			})
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_INPUT",
			Message: "could not open uploaded file",
		})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_INPUT",
			Message: "could not read uploaded file",
		})
		return
	}
	if int64(len(data)) > s.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Code:    "TOO_LARGE",
			Message: "document exceeds upload limit",
		})
		return
	}

	res, err := s.processor.Process(c.Request.Context(), data, fh.Filename)
	if err != nil {
		status := common.HTTPStatus(err)
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			msg := appErr.Message
			if errors.Is(err, common.ErrUnsupportedMedia) {
				msg += "; accepted: " + constants.SupportedMediaTypesList()
			}
			c.JSON(status, errorResponse{Code: appErr.Code, Message: msg})
			return
		}
		c.JSON(status, errorResponse{Code: "INTERNAL", Message: "document processing failed"})
		return
	}

	s.persist(c, fh.Filename, res)

	c.JSON(http.StatusOK, documentResponse{
		Filename: fh.Filename,
		OCRText:  res.OCRText,
		Record:   res.Record,
		Degraded: res.Degraded,
	})
}

// persist stores the record when a store is configured. Failures are logged
// and swallowed: the client already has its record.
func (s *Server) persist(c *gin.Context, filename string, res pipeline.Result) {
	if s.records == nil {
		return
	}
	rec := res.Record
	err := s.records.Insert(c.Request.Context(), repository.StoredRecord{
		ID:               uuid.New(),
		Filename:         filename,
		Date:             rec.Date,
		CounterpartyName: rec.CounterpartyName,
		Amount:           rec.Amount,
		Category:         rec.Category,
		IsDeductible:     rec.IsDeductible,
		DeductionType:    rec.DeductionType,
		DeductionDetails: rec.DeductionDetails,
		Description:      rec.Description,
		OCRText:          res.OCRText,
	})
	if err != nil {
		s.logger.Warn("records.insert_failed", "error", err, "filename", filename)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"guideline_index": s.retriever.Available(c.Request.Context()),
		"records_store":   s.records != nil,
	})
}

func (s *Server) handleExport(c *gin.Context) {
	if s.exporter == nil {
		c.JSON(http.StatusNotFound, errorResponse{
			Code:    "EXPORT_DISABLED",
			Message: "record persistence is not configured",
		})
		return
	}

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_INPUT", Message: "from: " + err.Error()})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_INPUT", Message: "to: " + err.Error()})
		return
	}

	data, err := s.exporter.ExportRecordsXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Error("export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "EXPORT_FAILED", Message: "could not build export"})
		return
	}

	filename := "records-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, errors.New("expected YYYY-MM-DD")
	}
	return &t, nil
}

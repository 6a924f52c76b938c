package rest

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"dns-manager-backend/internal/domain"
	"dns-manager-backend/internal/usecase"
)

type dnsHandler struct {
	dns       usecase.DNSUsecase
	imports   usecase.ImportUsecase
	uploadDir string
	lg        *zap.Logger
}

// recordRequest accepts both "user" and "owner" for the record owner
type recordRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Type     string `json:"type" binding:"required"`
	Value    string `json:"value" binding:"required"`
	TTL      int    `json:"ttl"`
	User     string `json:"user"`
	Owner    string `json:"owner"`
	RecordID string `json:"recordId"`
	ID       string `json:"id"`
}

func (r recordRequest) input(caller string) domain.DNSRecordInput {
	owner := lo.CoalesceOrEmpty(r.Owner, r.User, caller)
	return domain.DNSRecordInput{
		Domain: r.Domain,
		Type:   r.Type,
		Value:  r.Value,
		TTL:    r.TTL,
		Owner:  owner,
	}
}

// list returns the caller's own records. A "user" query naming anyone else
// is refused.
func (h *dnsHandler) list(c *gin.Context) {
	caller := callerID(c)
	if user := c.Query("user"); user != "" && user != caller {
		c.JSON(http.StatusForbidden, errorResponse{Success: false, Message: "cannot list records of another user"})
		return
	}
	records, err := h.dns.ListRecords(c.Request.Context(), usecase.ListRecordsInput{Owner: caller})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *dnsHandler) filtered(c *gin.Context) {
	field := c.Query("filter")
	if field == "" {
		badRequest(c, "filter is required")
		return
	}
	records, err := h.dns.ListRecords(c.Request.Context(), usecase.ListRecordsInput{
		Field: field,
		Value: c.Query("value"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}

func (h *dnsHandler) distributed(c *gin.Context) {
	counts, err := h.dns.Distribution(c.Request.Context(), c.Query("parameter"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "distribution": counts})
}

func (h *dnsHandler) zones(c *gin.Context) {
	zones, err := h.dns.ListZones(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": zones})
}

func (h *dnsHandler) create(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	record, err := h.dns.CreateRecord(c.Request.Context(), req.input(callerID(c)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *dnsHandler) update(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	record, err := h.dns.UpdateRecord(c.Request.Context(), usecase.UpdateRecordInput{
		DNSRecordInput: req.input(callerID(c)),
		RecordID:       lo.CoalesceOrEmpty(req.RecordID, req.ID),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "DNS record updated successfully", "record": record})
}

func (h *dnsHandler) delete(c *gin.Context) {
	id := lo.CoalesceOrEmpty(c.Param("id"), c.Query("id"))
	if id == "" {
		badRequest(c, "id is required")
		return
	}
	record, err := h.dns.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted", "record": record})
}

func (h *dnsHandler) bulkUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No files were uploaded.")
		return
	}

	path := filepath.Join(h.uploadDir, "upload-"+uuid.NewString())
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.lg.Error("[BulkUpload] ERROR", zap.String("filename", file.Filename), zap.Error(err))
		writeError(c, domain.StoreError("save upload", err))
		return
	}

	result, err := h.imports.ImportFile(c.Request.Context(), usecase.Upload{
		Path:        path,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Bulk upload processed",
		"successfulRecords": result.Succeeded,
		"failedRecords":     result.Failed,
	})
}

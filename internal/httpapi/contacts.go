package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autodialer/internal/contacts"
	"autodialer/pkg/logger"
)

const previewRows = 5

// ImportContacts replaces the campaign contact list with a normalized upload
// (multipart field "file", .csv or .xlsx).
func (h Handlers) ImportContacts(c *gin.Context) {
	log := logger.FromGin(c)

	if h.MaxUploadBytes > 0 {
		if c.Request.ContentLength > h.MaxUploadBytes {
			abortError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		abortError(c, http.StatusBadRequest, "multipart field \"file\" required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.Error("upload open failed", "err", err)
		abortError(c, http.StatusInternalServerError, "upload unreadable")
		return
	}
	defer f.Close()

	res, err := contacts.ParseFile(fh.Filename, f)
	if err != nil {
		if contacts.IsParseError(err) {
			log.Warn("contact import rejected", "filename", fh.Filename, "err", err)
			abortError(c, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("contact import failed", "filename", fh.Filename, "err", err)
		abortError(c, http.StatusInternalServerError, "import failed")
		return
	}

	release := h.Dialer.Exclusive()
	h.Campaign.Load(res)
	release()
	if h.Metrics != nil {
		h.Metrics.ContactsImported(len(res.Contacts), res.Dropped())
	}
	if h.Activity != nil {
		h.Activity.ContactsImported(c.Request.Context(), fh.Filename, len(res.Contacts), res.Dropped())
	}
	log.Info("contacts imported", "filename", fh.Filename, "imported", len(res.Contacts), "dropped", res.Dropped())

	preview := res.Contacts
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}
	c.JSON(http.StatusOK, gin.H{
		"imported":    len(res.Contacts),
		"dropped":     res.Dropped(),
		"source_rows": res.SourceRows,
		"mapping":     res.Mapping,
		"preview":     preview,
	})
}

func (h Handlers) ListContacts(c *gin.Context) {
	list := contacts.Search(h.Campaign.Contacts(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"contacts": list,
		"total":    len(list),
		"mapping":  h.Campaign.Mapping(),
	})
}

// ExportContacts downloads the (optionally filtered) list as name,phone,state CSV.
func (h Handlers) ExportContacts(c *gin.Context) {
	list := contacts.Search(h.Campaign.Contacts(), c.Query("q"))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=contacts.csv")
	c.Status(http.StatusOK)
	if err := contacts.WriteCSV(c.Writer, list); err != nil {
		logger.FromGin(c).Error("export contacts: csv write error", "err", err)
	}
}

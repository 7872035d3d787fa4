package store

import (
	"relaylog/pkg/docstore"
	"relaylog/pkg/errs"
	"relaylog/pkg/models"
	"relaylog/pkg/timestamp"
)

// DefaultPageSize applies when a page request leaves the size unset.
const DefaultPageSize = 50

// MaxPageSize caps a single archive page.
const MaxPageSize = 500

// Archive reads the relocated portion of the log.
type Archive struct {
	docs docstore.Client
	ext  timestamp.Extractor
}

func NewArchive(docs docstore.Client, ext timestamp.Extractor) *Archive {
	return &Archive{docs: docs, ext: ext}
}

// Page is one slice of the archive. Messages run oldest to newest within
// the page; page zero holds the newest messages.
type Page struct {
	Messages []models.Message `json:"messages"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"has_more"`
}

// Page returns archive page number page. Paging walks newest-first so page
// zero is always the most recent slice, then each page is reversed back to
// chronological order for display.
func (a *Archive) Page(page, pageSize int) (Page, error) {
	if page < 0 {
		return Page{}, errs.Malformed("page must be non-negative")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	msgs, err := loadMessages(a.docs, a.ext, ColArchive)
	if err != nil {
		return Page{}, errs.Unavailable("listing archive", err)
	}
	sortChronological(msgs)
	// newest first for slicing
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	total := len(msgs)
	offset := page * pageSize
	out := Page{Page: page, PageSize: pageSize, Total: total}
	if offset >= total {
		out.Messages = []models.Message{}
		return out, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	slice := append([]models.Message(nil), msgs[offset:end]...)
	// back to chronological within the page
	for i, j := 0, len(slice)-1; i < j; i, j = i+1, j-1 {
		slice[i], slice[j] = slice[j], slice[i]
	}
	out.Messages = slice
	out.HasMore = end < total
	return out, nil
}

// Count returns the number of archived documents.
func (a *Archive) Count() (int, error) {
	n, err := a.docs.Count(ColArchive)
	if err != nil {
		return 0, errs.Unavailable("counting archive", err)
	}
	return n, nil
}

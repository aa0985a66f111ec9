package reports

import (
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/report"
)

// Report is one field-service report.
type Report struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Customer  string          `json:"customer"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Data      *report.DocData `json:"data"`
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContentType string

const (
	ContentEssay        ContentType = "essay"
	ContentPresentation ContentType = "presentation"
	ContentSlides       ContentType = "slides"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentEssay, ContentPresentation, ContentSlides:
		return true
	}
	return false
}

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
)

// ParseFormat matches the case-sensitive markers offered on the format keyboard
func ParseFormat(text string) (Format, bool) {
	switch {
	case strings.Contains(text, "PDF"):
		return FormatPDF, true
	case strings.Contains(text, "DOCX"):
		return FormatDOCX, true
	}
	return "", false
}

const OrderPending = "pending"

type ContentOrder struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	UserID      uuid.UUID   `db:"user_id" json:"user_id"`
	ContentType ContentType `db:"content_type" json:"content_type"`
	Title       string      `db:"title" json:"title"`
	Institute   string      `db:"institute" json:"institute"`
	Subject     string      `db:"subject" json:"subject"`
	Direction   string      `db:"direction" json:"direction"`
	Pages       int         `db:"pages" json:"pages"`
	Format      Format      `db:"format" json:"format"`
	CostCoins   int64       `db:"cost_coins" json:"cost_coins"`
	Status      string      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

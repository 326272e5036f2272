package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// MinTextRunes is the shortest transcript accepted as a readable resume.
const MinTextRunes = 50

const msgTooShort = "PDF内容过少或无法提取，请检查文件"

// ExtractionError marks a file whose text could not be recovered.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// pageSource yields the text runs of each page in reading order.
type pageSource interface {
	NumPage() int
	Runs(page int) ([]string, error)
}

// PDF returns the plain-text transcript of a PDF document. Runs on a page are
// joined by a single space and every page ends with a newline.
func PDF(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := openPDF(data)
	if err != nil {
		return "", unreadable(err)
	}
	return transcript(ctx, src)
}

func transcript(ctx context.Context, src pageSource) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = unreadable(fmt.Errorf("%v", rec))
		}
	}()

	var b strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		runs, err := src.Runs(i)
		if err != nil {
			return "", unreadable(err)
		}
		b.WriteString(strings.Join(runs, " "))
		b.WriteByte('\n')
	}

	out := strings.TrimSpace(b.String())
	if utf8.RuneCountInString(out) < MinTextRunes {
		return "", &ExtractionError{Message: msgTooShort}
	}
	return out, nil
}

func unreadable(err error) *ExtractionError {
	return &ExtractionError{Message: fmt.Sprintf("无法读取PDF文件: %s", err.Error()), Err: err}
}

type ledongthucSource struct {
	r *pdf.Reader
}

func openPDF(data []byte) (src pageSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			src = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return ledongthucSource{r: r}, nil
}

func (s ledongthucSource) NumPage() int {
	return s.r.NumPage()
}

func (s ledongthucSource) Runs(page int) ([]string, error) {
	p := s.r.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil, err
	}
	runs := make([]string, 0, len(rows))
	for _, row := range rows {
		var line strings.Builder
		for _, t := range row.Content {
			line.WriteString(t.S)
		}
		if line.Len() > 0 {
			runs = append(runs, line.String())
		}
	}
	return runs, nil
}

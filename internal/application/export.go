package application

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// CSVHeader is the exact column set of the exported comment table.
var CSVHeader = []string{"id", "author", "text", "published_at", "like_count", "language", "compound_score", "label"}

// ErrMalformedCSV is returned by ReadCSV for input that was not produced by WriteCSV.
var ErrMalformedCSV = errors.New("malformed comment csv")

// WriteCSV writes comments as UTF-8 CSV with CSVHeader. Timestamps are RFC 3339
// in UTC and scores use the shortest exact decimal form, so identical input
// produces identical bytes.
func WriteCSV(w io.Writer, comments []model.ScoredComment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(CSVHeader))
	for _, c := range comments {
		record[0] = c.ID
		record[1] = c.Author
		record[2] = c.Text
		record[3] = ""
		if c.HasPublishedAt() {
			record[3] = c.PublishedAt.UTC().Format(time.RFC3339)
		}
		record[4] = strconv.FormatInt(c.LikeCount, 10)
		record[5] = c.Language
		record[6] = strconv.FormatFloat(c.CompoundScore, 'f', -1, 64)
		record[7] = string(c.Label)

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for comment %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses a table written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.ScoredComment, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if !slices.Equal(header, CSVHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformedCSV, header)
	}

	comments := []model.ScoredComment{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		c, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func parseRecord(record []string) (model.ScoredComment, error) {
	var c model.ScoredComment
	c.ID = record[0]
	c.Author = record[1]
	c.Text = record[2]

	if record[3] != "" {
		t, err := time.Parse(time.RFC3339, record[3])
		if err != nil {
			return c, fmt.Errorf("published_at: %w", err)
		}
		c.PublishedAt = t.UTC()
	}

	likes, err := strconv.ParseInt(record[4], 10, 64)
	if err != nil {
		return c, fmt.Errorf("like_count: %w", err)
	}
	c.LikeCount = likes
	c.Language = record[5]

	score, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return c, fmt.Errorf("compound_score: %w", err)
	}
	c.CompoundScore = score

	if c.Label, err = model.ParseLabel(record[7]); err != nil {
		return c, err
	}
	return c, nil
}

package attemptservice

import (
	"context"
	"fmt"
	"io"

	"github.com/Black-And-White-Club/speedsolve/pkg/observability/attr"
	"github.com/google/uuid"
)

// maxImportBytes caps an uploaded file.
const maxImportBytes = 10 << 20

// ImportAttempts parses an uploaded CSV or XLSX file and stores its rows as
// one batch for the given pair.
func (s *AttemptService) ImportAttempts(ctx context.Context, userID, puzzleTypeID uuid.UUID, filename string, r io.Reader) (int, error) {
	parser, err := s.parsers.GetParser(filename)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAttempt, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportBytes+1))
	if err != nil {
		return 0, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxImportBytes {
		return 0, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAttempt, maxImportBytes)
	}

	rows, err := parser.Parse(data, s.now())
	if err != nil {
		s.logger.WarnContext(ctx, "Import rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.String("filename", filename),
			attr.Error(err),
		)
		return 0, fmt.Errorf("%w: %w", ErrInvalidAttempt, err)
	}
	if len(rows) == 0 {
		return 0, ErrEmptyBatch
	}

	reqs := make([]NewAttempt, len(rows))
	for i, row := range rows {
		performedAt := row.PerformedAt
		reqs[i] = NewAttempt{
			UserID:       userID,
			PuzzleTypeID: puzzleTypeID,
			Milliseconds: row.Milliseconds,
			DNF:          row.DNF,
			Penalty:      row.Penalty,
			PerformedAt:  &performedAt,
		}
	}

	s.logger.InfoContext(ctx, "Importing attempts",
		attr.ExtractCorrelationID(ctx),
		attr.UserID(userID),
		attr.PuzzleTypeID(puzzleTypeID),
		attr.String("filename", filename),
		attr.Int("rows", len(rows)),
	)
	return s.BatchCreateAttempts(ctx, reqs)
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/champions4change/tournament-engine/models"
)

// BracketArchiver snapshots a finished tournament's full bracket as JSON
// and uploads it for long-term storage. The archive is the permanent record
// once the live rows age out.
type BracketArchiver struct {
	uploader FileUploader
}

func NewBracketArchiver(uploader FileUploader) *BracketArchiver {
	return &BracketArchiver{uploader: uploader}
}

type bracketArchive struct {
	Tournament *models.Tournament `json:"tournament"`
	ArchivedAt time.Time          `json:"archived_at"`
}

func (a *BracketArchiver) ArchiveBracket(ctx context.Context, tournament *models.Tournament) (string, error) {
	payload, err := json.Marshal(bracketArchive{
		Tournament: tournament,
		ArchivedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal bracket archive for tournament %d: %w", tournament.ID, err)
	}

	key := fmt.Sprintf("archives/tournament_%d.json", tournament.ID)
	if _, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		return "", err
	}
	return key, nil
}

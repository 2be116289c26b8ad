package share

import (
	"context"
	"fmt"
	"log"
)

// ContentType of every shared export.
const ContentType = "text/csv"

// Artifact describes a finished export file handed to the outbound channel.
type Artifact struct {
	Trailer     string `json:"trailer"`
	Terminal    string `json:"terminal"`
	Path        string `json:"path"`
	FileName    string `json:"file_name"`
	Rows        int    `json:"rows"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ContentType string `json:"content_type"`
}

// NewArtifact fills in the subject and body used for a trailer export.
func NewArtifact(trailer, terminal, path, fileName string, rows int) Artifact {
	return Artifact{
		Trailer:     trailer,
		Terminal:    terminal,
		Path:        path,
		FileName:    fileName,
		Rows:        rows,
		Subject:     fmt.Sprintf("Cubing Data - Trailer %s", trailer),
		Body:        fmt.Sprintf("Attached cubing data for trailer %s", trailer),
		ContentType: ContentType,
	}
}

// Sharer hands a finished export to whoever consumes it.
type Sharer interface {
	Share(ctx context.Context, a Artifact) error
}

// LogSharer only records that the file is ready.
type LogSharer struct{}

func (LogSharer) Share(_ context.Context, a Artifact) error {
	log.Printf("Export ready for trailer %s: %s (%d rows)", a.Trailer, a.Path, a.Rows)
	return nil
}

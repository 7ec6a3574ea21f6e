package signals

import (
	"fmt"
	"strings"

	"github.com/optifeed/optifeed/internal/clients"
	"github.com/optifeed/optifeed/internal/models"
)

const (
	// Telegram rejects messages above 4096 characters; splitting at the soft
	// limit leaves headroom for the Part markers added after splitting.
	MAX_MESSAGE_LENGTH = 4096
	SOFT_LIMIT         = 3900
)

// FormatSignalMessage renders one analysis as a MarkdownV2-safe message.
// Inserted values are escaped; template markup is not.
func FormatSignalMessage(news models.AnalyzedNews) string {
	escapedText := clients.EscapeMarkdownV2(news.Text)

	sectors := news.AffectedSectors
	if len(sectors) == 0 {
		sectors = []string{"Other"}
	}
	escapedSectors := make([]string, 0, len(sectors))
	for _, sector := range sectors {
		escapedSectors = append(escapedSectors, clients.EscapeMarkdownV2(sector))
	}

	header := "*🗞️ Market Signal*\n\n"
	footer := fmt.Sprintf("\n\n• Impact: *%s*\n• Magnitude: *%s*\n• Sectors: _%s_",
		clients.EscapeMarkdownV2(fmt.Sprintf("%.2f", news.ImpactScore)),
		clients.EscapeMarkdownV2(fmt.Sprintf("%.2f", news.MagnitudeScore)),
		strings.Join(escapedSectors, ", "))

	return header + escapedText + footer
}

// SplitMessage cuts an oversized message into chunks no longer than maxLength
// runes, preferring the last newline inside the window and hard-cutting when
// none exists. Chunks are whitespace-trimmed. With more than one chunk, each
// gets a Part i/N prefix added after splitting, so the marker does not count
// against maxLength; callers budget for that overhead.
func SplitMessage(message string, maxLength int) []string {
	var chunks []string

	remaining := []rune(message)
	for len(remaining) > maxLength {
		window := remaining[:maxLength]
		splitAt := -1
		for i := len(window) - 1; i >= 0; i-- {
			if window[i] == '\n' {
				splitAt = i
				break
			}
		}
		if splitAt == -1 {
			splitAt = maxLength
		}

		chunks = append(chunks, strings.TrimSpace(string(remaining[:splitAt])))
		remaining = []rune(strings.TrimSpace(string(remaining[splitAt:])))
	}
	if len(remaining) > 0 {
		chunks = append(chunks, strings.TrimSpace(string(remaining)))
	}

	if len(chunks) > 1 {
		for i, chunk := range chunks {
			chunks[i] = fmt.Sprintf("*Part %d/%d*\n\n%s", i+1, len(chunks), chunk)
		}
	}

	return chunks
}

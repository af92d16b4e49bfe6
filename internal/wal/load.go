package wal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// maxLineSize bounds a single WAL entry.
const maxLineSize = 16 << 20

// Load replays every entry in the WAL file in the order it was written.
// Malformed lines are skipped. Replay stops at the first error fn returns.
func (m *Manager) Load(fn func(*Entry) error) error {
	file, err := os.Open(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No WAL file exists yet, not an error
			return nil
		}
		return err
	}
	defer file.Close()

	var replayed, skipped int
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			log.Warn().Err(err).Msg("Skipping malformed WAL entry")
			skipped++
			continue
		}

		switch entry.Operation {
		case OperationWrite, OperationDelete:
			if err := fn(&entry); err != nil {
				return fmt.Errorf("replay %s entry %s: %w", entry.Operation, entry.ID, err)
			}
			replayed++
		default:
			log.Warn().Msgf("Unknown WAL operation %d, skipping", entry.Operation)
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading WAL file: %w", err)
	}

	log.Debug().Msgf("replayed %d WAL entries from %s, skipped %d", replayed, m.path, skipped)
	return nil
}

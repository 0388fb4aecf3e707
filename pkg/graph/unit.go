package graph

import (
	"fmt"

	"github.com/sakshi-kadian/aurelius/pkg/common"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const chunkIDAlphabet = "0123456789abcdef"

// ChunkText splits text into windows of size runes where consecutive
// windows share overlap runes. The last window ends at the end of the text;
// no window lies entirely inside its predecessor.
//
// Chunk ids have the form <source>_<index>_<8 hex chars>.
func ChunkText(source, text string, size, overlap int) ([]common.Chunk, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidChunking
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	step := size - overlap
	chunks := make([]common.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))

		suffix, err := gonanoid.Generate(chunkIDAlphabet, 8)
		if err != nil {
			return nil, fmt.Errorf("failed to generate chunk id: %w", err)
		}
		idx := len(chunks)
		chunks = append(chunks, common.Chunk{
			ID:     fmt.Sprintf("%s_%d_%s", source, idx, suffix),
			Source: source,
			Index:  idx,
			Start:  start,
			End:    end,
			Text:   string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}

package pdf

import (
	"context"
	"sync"

	"github.com/sakshi-kadian/aurelius/pkg/loader"

	"golang.org/x/sync/singleflight"
)

// PDFGraphLoader loads PDF files through another loader and extracts their
// text. The text is cleaned with loader.CleanText before it is returned.
type PDFGraphLoader struct {
	loader loader.GraphFileLoader

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewPDFGraphLoader creates a PDF loader that reads the raw PDF bytes with l.
func NewPDFGraphLoader(l loader.GraphFileLoader) *PDFGraphLoader {
	return &PDFGraphLoader{
		loader: l,
		cache:  make(map[string][]byte),
	}
}

// GetFileText extracts the text of a PDF file.
func (l *PDFGraphLoader) GetFileText(ctx context.Context, file loader.GraphFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}

		text, err := parsePDF(ctx, content)
		if err != nil {
			return nil, err
		}
		result := []byte(loader.CleanText(text))

		l.cacheMu.Lock()
		l.cache[key] = result
		l.cacheMu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

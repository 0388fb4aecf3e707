package loader

import (
	"context"
	"path"
	"strings"
)

type GraphFileType string

const (
	GraphFileTypeDocument GraphFileType = "document"
	GraphFileTypePDF      GraphFileType = "pdf"
	GraphFileTypeWeb      GraphFileType = "web"
)

// GraphFile represents a document that is turned into chunks and facts.
// FilePath is whatever the Loader understands: a path on disk, an object
// key or a URL. Title, when set, replaces the base name of FilePath as the
// chunk source, e.g. the original name of an upload stored under a job key.
//
// The actual file content is retrieved via the associated GraphFileLoader.
type GraphFile struct {
	ID       string
	FilePath string
	Title    string
	FileType GraphFileType
	Loader   GraphFileLoader
}

// NewGraphFileParams defines the input parameters for creating a new GraphFile
// instance.
type NewGraphFileParams struct {
	ID       string
	FilePath string
	Title    string
	Loader   GraphFileLoader
}

// NewGraphDocumentFile creates a GraphFile for plain text content.
func NewGraphDocumentFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		Title:    params.Title,
		FileType: GraphFileTypeDocument,
		Loader:   params.Loader,
	}
}

// NewGraphPDFFile creates a GraphFile whose text is extracted from a PDF and
// cleaned of page furniture.
func NewGraphPDFFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		Title:    params.Title,
		FileType: GraphFileTypePDF,
		Loader:   params.Loader,
	}
}

// NewGraphWebFile creates a GraphFile for a web page.
func NewGraphWebFile(params NewGraphFileParams) GraphFile {
	return GraphFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		Title:    params.Title,
		FileType: GraphFileTypeWeb,
		Loader:   params.Loader,
	}
}

// DetectFileType picks a GraphFileType from a path or URL.
func DetectFileType(filePath string) GraphFileType {
	lower := strings.ToLower(filePath)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return GraphFileTypeWeb
	case path.Ext(lower) == ".pdf":
		return GraphFileTypePDF
	default:
		return GraphFileTypeDocument
	}
}

// Name returns the title or the base name of the file, used as the chunk
// source.
func (f GraphFile) Name() string {
	if f.Title != "" {
		return f.Title
	}
	name := path.Base(strings.TrimRight(f.FilePath, "/"))
	if name == "." || name == "/" {
		return f.ID
	}
	return name
}

// GetText retrieves the text content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *GraphFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, ErrNoLoader
	}
	return f.Loader.GetFileText(ctx, *f)
}

// GraphFileLoader defines the interface for loading the contents of a GraphFile.
// Implementations may load files from disk, cloud storage, or other sources.
type GraphFileLoader interface {
	GetFileText(ctx context.Context, file GraphFile) ([]byte, error)
}

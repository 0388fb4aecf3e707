package common

// DerivedPathTag marks a reasoning path that was found by graph traversal.
const DerivedPathTag = "Golden Beam"

// Triplet is a raw subject-predicate-object fact as a language model
// produced it. Nothing about it is normalized; see schema.NewFact.
type Triplet struct {
	Subject   string `json:"subject" jsonschema_description:"The entity the fact is about"`
	Predicate string `json:"predicate" jsonschema_description:"The relationship, as an UPPERCASE verb phrase"`
	Object    string `json:"object" jsonschema_description:"The entity or value the subject relates to"`
}

// Chunk is a contiguous window of document text. Chunks are the unit of
// work for extraction and for the similarity index.
//
// Start and End are rune offsets into the cleaned document text, so
// neighbouring chunks overlap when the chunker is configured with an
// overlap.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Index  int    `json:"chunk_index"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

// Edge is one directed relationship read back from the graph store.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphNode is a node of a graph projection.
type GraphNode struct {
	ID string `json:"id"`
}

// GraphLink is a link of a graph projection.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// GraphProjection is a bounded node/link view of the stored graph, shaped
// for force-directed renderers.
//
// Truncated is set when the edge limit was reached; the projection is then
// a sample and not the whole graph.
type GraphProjection struct {
	Nodes     []GraphNode `json:"nodes"`
	Links     []GraphLink `json:"links"`
	Truncated bool        `json:"truncated"`
}

// ReasoningPath is the shortest connection found between two entities.
// Nodes are ordered from start to end; a zero-hop path holds one node.
type ReasoningPath struct {
	Nodes      []string `json:"nodes"`
	Confidence float64  `json:"confidence"`
	Type       string   `json:"type"`
}

// Hops returns the number of edges on the path.
func (p ReasoningPath) Hops() int {
	if len(p.Nodes) == 0 {
		return 0
	}
	return len(p.Nodes) - 1
}

// MergeReport counts the outcome of one merge batch.
type MergeReport struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`
}

// Add folds other into r.
func (r *MergeReport) Add(other MergeReport) {
	r.Accepted += other.Accepted
	r.Skipped += other.Skipped
}

// IngestResult summarizes the ingestion of one document.
type IngestResult struct {
	Status            string `json:"status"`
	Filename          string `json:"filename"`
	ChunksProcessed   int    `json:"chunks_processed"`
	TripletsExtracted int    `json:"triplets_extracted"`
	TripletsMerged    int    `json:"triplets_merged"`
	TripletsSkipped   int    `json:"triplets_skipped"`
	ChunksFailed      int    `json:"chunks_failed"`
	ChunksIndexed     int    `json:"chunks_indexed"`
}

// ReasoningResult is the answer to a natural-language query. Path is nil
// when no connection between the resolved entities exists.
type ReasoningResult struct {
	Answer  string         `json:"answer"`
	Path    *ReasoningPath `json:"path"`
	Context []string       `json:"context"`
	Steps   []string       `json:"steps"`
}

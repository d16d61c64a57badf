package ingest

// Chunk is a single indexed unit of textbook content with its metadata.
type Chunk struct {
	Content    string
	DocID      string
	Chapter    string
	Part       string
	Section    string
	Anchor     string
	SourceURL  string
	FilePath   string
	ChunkIndex int
	TokenCount int
}

// rawChunk is a chunk of text paired with the heading it falls under,
// before document metadata is attached.
type rawChunk struct {
	Text    string
	Heading string
}

// Stats summarizes an ingestion run.
type Stats struct {
	FilesProcessed  int
	FilesSkipped    int
	ChunksCreated   int
	TokensEstimated int
}

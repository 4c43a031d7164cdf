package models

// Chunk is one position-tagged slice of a call transcript, the unit of
// indexing and retrieval. StartChar/EndChar are a half-open interval
// into the original transcript text.
type Chunk struct {
	ChunkID    string
	CallID     string
	CallTitle  string
	ChunkIndex int
	Text       string
	StartChar  int
	EndChar    int
}

// SearchResult pairs a retrieved chunk with its cosine distance.
// Lower distance means more similar; similarity = 1 - distance.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}

// Response is a generated answer plus the ranked sources it was
// conditioned on. Sources is empty for summaries and fallback answers.
type Response struct {
	Answer  string
	Sources []SearchResult
}

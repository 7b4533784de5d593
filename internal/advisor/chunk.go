package advisor

// ChunkKind tags the variant carried by a Chunk.
type ChunkKind int

// Chunk kinds, in the order a consumer usually sees them.
const (
	ChunkLabel ChunkKind = iota
	ChunkContent
	ChunkError
	ChunkDone
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkLabel:
		return "label"
	case ChunkContent:
		return "content"
	case ChunkError:
		return "error"
	case ChunkDone:
		return "done"
	default:
		return "unknown"
	}
}

// Chunk is one piece of a streamed advisor response.
type Chunk struct {
	Text string
	Kind ChunkKind
}

// IsTerminal reports whether no further chunks follow.
func (c Chunk) IsTerminal() bool {
	return c.Kind == ChunkDone
}

func labelChunk(text string) Chunk   { return Chunk{Kind: ChunkLabel, Text: text} }
func contentChunk(text string) Chunk { return Chunk{Kind: ChunkContent, Text: text} }
func errorChunk(text string) Chunk   { return Chunk{Kind: ChunkError, Text: text} }

package tui

import (
	"github.com/SAMRAT47/genchat/pkg/llm"
	"github.com/SAMRAT47/genchat/pkg/provider"
)

// streamStartedMsg signals that the provider accepted the request and
// chunks will follow.
type streamStartedMsg struct {
	stream provider.Stream
}

// streamChunkMsg delivers one content delta from the stream.
type streamChunkMsg struct {
	chunk *llm.StreamChunk
}

// streamDoneMsg signals that the stream finished cleanly.
type streamDoneMsg struct {
	usage *llm.Usage
}

// streamErrMsg signals a provider failure; shown inline in the transcript.
type streamErrMsg struct {
	err error
}

// exportDoneMsg reports the result of writing a transcript to disk.
type exportDoneMsg struct {
	path string
	err  error
}

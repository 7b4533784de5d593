// Package llm provides the call boundary to external completion backends.
// Every backend is reached through an OpenAI-compatible chat completions API
// and supports both single-shot and incremental (streaming) invocation.
package llm

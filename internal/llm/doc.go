// Package llm provides the model handle used for vulnerability analysis.
//
// Two locally hosted backends are supported: an Ollama server (native
// /api/chat and /api/generate endpoints) and a llama.cpp server
// (/v1/chat/completions and /completion). [Load] probes the server once,
// deciding whether prompts go out as role-structured chat messages or as a
// single flattened instruction text, and returns a [Model] that serializes
// generation calls.
//
// HTTP goes through a shared resty client that retries 429 and 5xx
// responses with back-off. Generated text is pulled out of the response
// with gjson so the same helper serves every endpoint shape.
package llm

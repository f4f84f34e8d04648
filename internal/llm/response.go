package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// finish turns raw model text into a Response. Structured requests get their
// code fences stripped, truncation reported and the schema enforced.
func finish(req Request, text string, usage Usage, model, stop string) (*Response, error) {
	text = strings.TrimSpace(text)

	if req.Schema == nil {
		if text == "" {
			return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
		}
		content, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("encode text response: %w", err)
		}
		return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
	}

	content := stripCodeFence([]byte(text))
	switch {
	case stop == StopBlocked:
		return nil, &ErrInvalidResponse{Content: content, Err: errors.New("response blocked by provider")}
	case stop == StopMaxTokens:
		return nil, &ErrMaxTokensExceeded{Content: content}
	case len(content) == 0:
		return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}

// stripCodeFence removes a surrounding markdown fence such as ```json ... ```.
func stripCodeFence(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		b = b[3:]
	}
	b = bytes.TrimSpace(b)
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}

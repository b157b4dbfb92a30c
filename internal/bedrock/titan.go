// Package bedrock invokes Amazon Titan text models through the Bedrock
// runtime InvokeModel API.
package bedrock

import (
	"encoding/json"
	"fmt"
)

// TextGenerationConfig is the "textGenerationConfig" object of a Titan text
// request.
type TextGenerationConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	StopSequences []string `json:"stopSequences"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
}

// DefaultTextGenerationConfig returns the generation parameters used when the
// caller does not supply any.
func DefaultTextGenerationConfig() TextGenerationConfig {
	return TextGenerationConfig{
		MaxTokenCount: 512,
		StopSequences: []string{},
		Temperature:   0.7,
		TopP:          0.9,
	}
}

// TextRequest is the body of a Titan text InvokeModel call.
type TextRequest struct {
	InputText            string               `json:"inputText"`
	TextGenerationConfig TextGenerationConfig `json:"textGenerationConfig"`
}

// TextResult is one generated completion.
type TextResult struct {
	TokenCount       int    `json:"tokenCount"`
	OutputText       string `json:"outputText"`
	CompletionReason string `json:"completionReason"`
}

// TextResponse is the body returned by a Titan text InvokeModel call.
type TextResponse struct {
	InputTextTokenCount int          `json:"inputTextTokenCount"`
	Results             []TextResult `json:"results"`
}

// NewTextRequest serializes a request for prompt. The prompt is sent
// verbatim.
func NewTextRequest(prompt string, gen TextGenerationConfig) ([]byte, error) {
	if gen.StopSequences == nil {
		gen.StopSequences = []string{}
	}
	body, err := json.Marshal(TextRequest{
		InputText:            prompt,
		TextGenerationConfig: gen,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return body, nil
}

// ResponseError reports a response body that could not be turned into text.
type ResponseError struct {
	Reason string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %s: %v", e.Reason, e.Err)
	}
	return "malformed model response: " + e.Reason
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// ParseTextResponse returns the first result's output text.
func ParseTextResponse(body []byte) (string, error) {
	if len(body) == 0 {
		return "", &ResponseError{Reason: "empty body"}
	}

	var resp TextResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ResponseError{Reason: "invalid JSON", Err: err}
	}
	if len(resp.Results) == 0 {
		return "", &ResponseError{Reason: "no results"}
	}
	return resp.Results[0].OutputText, nil
}

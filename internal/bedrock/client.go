package bedrock

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

const contentTypeJSON = "application/json"

// ModelInvoker is the Bedrock runtime operation the client needs
// (enables testing).
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client sends prompts to a Titan text model.
type Client struct {
	invoker    ModelInvoker
	generation TextGenerationConfig
}

// NewClient creates a client from an AWS config whose credentials and region
// have already been resolved.
func NewClient(cfg aws.Config, gen TextGenerationConfig) *Client {
	return NewClientWithInvoker(bedrockruntime.NewFromConfig(cfg), gen)
}

// NewClientWithInvoker creates a client around an existing invoker.
func NewClientWithInvoker(invoker ModelInvoker, gen TextGenerationConfig) *Client {
	return &Client{invoker: invoker, generation: gen}
}

// Generate sends prompt to modelID and returns the first generated text.
func (c *Client) Generate(ctx context.Context, modelID, prompt string) (string, error) {
	body, err := NewTextRequest(prompt, c.generation)
	if err != nil {
		return "", err
	}

	out, err := c.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
	})
	if err != nil {
		return "", newInvokeError(modelID, err)
	}
	if out == nil {
		return "", &ResponseError{Reason: "no output"}
	}
	return ParseTextResponse(out.Body)
}

// InvokeError wraps an InvokeModel failure with the service error code and,
// for the common cases, a hint.
type InvokeError struct {
	ModelID string
	Code    string
	Hint    string
	Err     error
}

func (e *InvokeError) Error() string {
	msg := fmt.Sprintf("invoking model %s: %v", e.ModelID, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *InvokeError) Unwrap() error {
	return e.Err
}

func newInvokeError(modelID string, err error) *InvokeError {
	ie := &InvokeError{ModelID: modelID, Err: err}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return ie
	}
	ie.Code = apiErr.ErrorCode()
	switch ie.Code {
	case "AccessDeniedException":
		ie.Hint = "the role needs bedrock:InvokeModel and model access must be enabled in the Bedrock console"
	case "ResourceNotFoundException":
		ie.Hint = "the model is not available in this region"
	case "ValidationException":
		ie.Hint = "the model rejected the request body"
	case "ThrottlingException", "ServiceQuotaExceededException":
		ie.Hint = "request rate or token quota exceeded"
	case "ExpiredTokenException", "UnrecognizedClientException":
		ie.Hint = "the session credentials are expired or invalid"
	}
	return ie
}

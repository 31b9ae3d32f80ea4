package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

// MessageSender sends a single request to the Anthropic messages API
type MessageSender interface {
	SendMessage(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropt.RequestOption) (*anthropic.Message, error)
}

// StreamingMessageSender implements MessageSender by streaming the response and accumulating it into a message
type StreamingMessageSender struct {
	client anthropic.Client
}

func NewStreamingMessageSender(client anthropic.Client) StreamingMessageSender {
	return StreamingMessageSender{
		client: client,
	}
}

func (sms StreamingMessageSender) SendMessage(
	ctx context.Context,
	params anthropic.MessageNewParams,
	opts ...anthropt.RequestOption,
) (*anthropic.Message, error) {
	stream := sms.client.Messages.NewStreaming(ctx, params, opts...)
	defer stream.Close()

	response := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		err := response.Accumulate(event)
		if err != nil {
			return nil, fmt.Errorf("failed to accumulate response content stream: %w", err)
		}
	}
	if stream.Err() != nil {
		return nil, fmt.Errorf("failed to stream response: %w", stream.Err())
	}
	if response.StopReason == "" {
		b, err := json.Marshal(response)
		if err != nil {
			logrus.WithError(err).Warn("Error while marshalling corrupt message for inspection")
		}
		return nil, fmt.Errorf("malformed message: %v", string(b))
	}

	return &response, nil
}

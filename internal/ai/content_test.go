package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeItem(t *testing.T) {
	testCases := []struct {
		item     ContentItem
		expected string
	}{
		{TextContent{Text: "hello"}, "hello"},
		{AnnotationContent{Quote: "fold here", FileID: "f1"}, "fold here: File #f1"},
		{FileReferenceContent{FileID: "f2"}, "File #f2"},
		{ImageContent{URI: "https://example.com/map.png"}, "https://example.com/map.png"},
		{ImageContent{DataURI: "data:image/png;base64,AAAA"}, "data:image/png;base64,AAAA"},
		{ImageContent{Data: []byte{1, 2, 3}}, "3 bytes"},
		{FunctionCallContent{ID: "call_1", Name: "get_specials"}, "call_1"},
		{FunctionResultContent{CallID: "call_1", Result: "Clam Chowder"}, "call_1 - Clam Chowder"},
		{FunctionResultContent{CallID: "call_2"}, "call_2 - *"},
	}

	for _, tc := range testCases {
		t.Run(tc.item.Kind(), func(t *testing.T) {
			assert.Equal(t, tc.expected, DescribeItem(tc.item))
		})
	}
}

func TestMessage_Content(t *testing.T) {
	msg := Message{
		Role: RoleAgent,
		Items: []ContentItem{
			TextContent{Text: "first"},
			FunctionCallContent{ID: "call_1", Name: "get_menu"},
			TextContent{Text: "second"},
		},
	}

	assert.Equal(t, "first\nsecond", msg.Content())
	assert.Equal(t, "", Message{}.Content())
}

func TestMessage_IsCode(t *testing.T) {
	msg := NewAgentMessage("CopyWriter", "fmt.Println()")
	assert.False(t, msg.IsCode())

	msg.Metadata = map[string]string{MetadataCode: "go"}
	assert.True(t, msg.IsCode())
}

func TestUsage_Add(t *testing.T) {
	sum := Usage{InputTokens: 10, OutputTokens: 2}.Add(Usage{InputTokens: 5, OutputTokens: 1})
	assert.Equal(t, Usage{InputTokens: 15, OutputTokens: 3}, sum)
}

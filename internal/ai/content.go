package ai

import "fmt"

// ContentItem is one piece of a message. The set of implementations is closed: TextContent, AnnotationContent,
// FileReferenceContent, ImageContent, FunctionCallContent and FunctionResultContent. Consumers switch over these
// types exhaustively
type ContentItem interface {
	// Kind returns the name used when displaying the item
	Kind() string

	contentItem()
}

// TextContent is plain generated or user-provided text
type TextContent struct {
	Text string
}

// AnnotationContent is a quote attributed to a file
type AnnotationContent struct {
	Quote  string
	FileID string
}

// FileReferenceContent references a file by id
type FileReferenceContent struct {
	FileID string
}

// ImageContent is an image, given by URI, data URI or raw bytes. At most one is expected to be set
type ImageContent struct {
	URI     string
	DataURI string
	Data    []byte
}

// FunctionCallContent records a tool call requested by the model
type FunctionCallContent struct {
	ID        string
	Name      string
	Arguments string // JSON
}

// FunctionResultContent records the result of a tool call that was returned to the model
type FunctionResultContent struct {
	CallID  string
	Result  string
	IsError bool
}

func (TextContent) Kind() string           { return "TextContent" }
func (AnnotationContent) Kind() string     { return "AnnotationContent" }
func (FileReferenceContent) Kind() string  { return "FileReferenceContent" }
func (ImageContent) Kind() string          { return "ImageContent" }
func (FunctionCallContent) Kind() string   { return "FunctionCallContent" }
func (FunctionResultContent) Kind() string { return "FunctionResultContent" }

func (TextContent) contentItem()           {}
func (AnnotationContent) contentItem()     {}
func (FileReferenceContent) contentItem()  {}
func (ImageContent) contentItem()          {}
func (FunctionCallContent) contentItem()   {}
func (FunctionResultContent) contentItem() {}

// DescribeItem returns a one-line description of a non-text content item. Text items describe as their text
func DescribeItem(item ContentItem) string {
	switch it := item.(type) {
	case TextContent:
		return it.Text
	case AnnotationContent:
		return fmt.Sprintf("%s: File #%s", it.Quote, it.FileID)
	case FileReferenceContent:
		return fmt.Sprintf("File #%s", it.FileID)
	case ImageContent:
		switch {
		case it.URI != "":
			return it.URI
		case it.DataURI != "":
			return it.DataURI
		default:
			return fmt.Sprintf("%d bytes", len(it.Data))
		}
	case FunctionCallContent:
		return it.ID
	case FunctionResultContent:
		result := it.Result
		if result == "" {
			result = "*"
		}
		return fmt.Sprintf("%s - %s", it.CallID, result)
	default:
		panic(fmt.Sprintf("unhandled content item %T", item))
	}
}

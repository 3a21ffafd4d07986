package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*TextractExtractor)(nil)

// TextractAPI is the subset of the Textract client used by the extractor
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// TextractExtractor implements driven.TextExtractor with synchronous
// Amazon Textract text detection on an S3 object.
type TextractExtractor struct {
	client TextractAPI
}

// NewTextractExtractor creates a new TextractExtractor
func NewTextractExtractor(client TextractAPI) *TextractExtractor {
	return &TextractExtractor{client: client}
}

// Extract returns the text of every LINE block in the order Textract returned them
func (e *TextractExtractor) Extract(ctx context.Context, ref domain.DocumentReference) ([]string, error) {
	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		},
	})
	if err != nil {
		return nil, &domain.ExtractionError{Document: ref, Err: err}
	}

	lines := make([]string, 0, len(out.Blocks))
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		lines = append(lines, aws.ToString(block.Text))
	}
	return lines, nil
}

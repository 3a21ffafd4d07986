package aws

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"github.com/custodia-labs/docpii/internal/core/domain"
	"github.com/custodia-labs/docpii/internal/core/ports/driven"
)

// MaxDetectTextBytes is the largest UTF-8 payload DetectPiiEntities accepts
const MaxDetectTextBytes = 100 * 1000

// Verify interface compliance
var _ driven.PIIDetector = (*ComprehendDetector)(nil)

// ComprehendAPI is the subset of the Comprehend client used by the detector
type ComprehendAPI interface {
	DetectPiiEntities(ctx context.Context, params *comprehend.DetectPiiEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectPiiEntitiesOutput, error)
}

// ComprehendDetector implements driven.PIIDetector with Amazon Comprehend
type ComprehendDetector struct {
	client ComprehendAPI
}

// NewComprehendDetector creates a new ComprehendDetector
func NewComprehendDetector(client ComprehendAPI) *ComprehendDetector {
	return &ComprehendDetector{client: client}
}

// Detect returns the entities Comprehend found in text
func (d *ComprehendDetector) Detect(ctx context.Context, text, languageCode string) ([]domain.PiiEntity, error) {
	if len(text) > MaxDetectTextBytes {
		return nil, &domain.ScanError{
			LanguageCode: languageCode,
			TextLength:   len(text),
			Err:          fmt.Errorf("%w: text exceeds %d bytes", domain.ErrInvalidInput, MaxDetectTextBytes),
		}
	}

	out, err := d.client.DetectPiiEntities(ctx, &comprehend.DetectPiiEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return nil, &domain.ScanError{LanguageCode: languageCode, TextLength: len(text), Err: err}
	}

	entities := make([]domain.PiiEntity, 0, len(out.Entities))
	for _, e := range out.Entities {
		entities = append(entities, domain.PiiEntity{
			Type:        domain.EntityType(e.Type),
			Score:       scoreToFloat64(aws.ToFloat32(e.Score)),
			BeginOffset: int(aws.ToInt32(e.BeginOffset)),
			EndOffset:   int(aws.ToInt32(e.EndOffset)),
		})
	}
	return entities, nil
}

// scoreToFloat64 widens a float32 score without exposing float32 noise (0.99, not 0.9900000095).
func scoreToFloat64(score float32) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(score), 'g', -1, 32), 64)
	return f
}

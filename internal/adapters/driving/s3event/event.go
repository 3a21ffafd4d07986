// Package s3event decodes S3 upload notifications into document references.
// It is shared by the Lambda and HTTP driving adapters.
package s3event

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"github.com/custodia-labs/docpii/internal/core/domain"
)

// FirstDocument returns the document reference of the event's first record.
func FirstDocument(event events.S3Event) (domain.DocumentReference, error) {
	if len(event.Records) == 0 {
		return domain.DocumentReference{}, domain.ErrNoRecords
	}

	s3 := event.Records[0].S3
	return domain.NewDocumentReference(s3.Bucket.Name, objectKey(s3.Object))
}

// Parse decodes a raw S3 notification body.
func Parse(body []byte) (events.S3Event, error) {
	var event events.S3Event
	if err := json.Unmarshal(body, &event); err != nil {
		return events.S3Event{}, fmt.Errorf("%w: malformed S3 event: %v", domain.ErrInvalidInput, err)
	}
	return event, nil
}

// objectKey returns the decoded object key.
// S3 encodes keys in notifications ("+" for space); an undecodable key is used as-is.
func objectKey(obj events.S3Object) string {
	if obj.URLDecodedKey != "" {
		return obj.URLDecodedKey
	}
	decoded, err := url.QueryUnescape(obj.Key)
	if err != nil {
		return obj.Key
	}
	return decoded
}

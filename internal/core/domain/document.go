package domain

import "fmt"

// DocumentReference identifies one stored document in an object-storage bucket.
// It is created from the triggering event and never mutated afterwards.
type DocumentReference struct {
	// Bucket is the bucket the document was uploaded to
	Bucket string `json:"bucket"`

	// Key is the object key inside the bucket; it also keys the finding record
	Key string `json:"key"`
}

// NewDocumentReference creates a validated DocumentReference
func NewDocumentReference(bucket, key string) (DocumentReference, error) {
	ref := DocumentReference{Bucket: bucket, Key: key}
	if err := ref.Validate(); err != nil {
		return DocumentReference{}, err
	}
	return ref, nil
}

// Validate checks that both bucket and key are present
func (r DocumentReference) Validate() error {
	if r.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidInput)
	}
	if r.Key == "" {
		return fmt.Errorf("%w: object key is required", ErrInvalidInput)
	}
	return nil
}

// String renders the reference as bucket/key
func (r DocumentReference) String() string {
	return r.Bucket + "/" + r.Key
}

package domain

import "context"

type PropertyRepository interface {
	// Create inserts the property and sets its ID.
	Create(ctx context.Context, property *Property) error
	FindByUserID(ctx context.Context, userID string) ([]*Property, error)
}

// ObjectStorage stores uploaded files and hands back their public URL.
type ObjectStorage interface {
	Put(ctx context.Context, obj Object) (string, error)
	Remove(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// UploadObserver is told about every attempted file upload.
type UploadObserver interface {
	UploadObserved(field string, err error)
}

const SubjectPropertyRegistered = "property.registered"

package syncstore

import "github.com/google/uuid"

// defaultIDProvider issues UUIDv7 pending tokens when no provider is injected.
type defaultIDProvider struct{}

func (defaultIDProvider) NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return value.String(), nil
}

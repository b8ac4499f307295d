package domain

import "context"

// ResidenceStore is read access to the remote residence collection.
// GetResidence returns ErrNotFound when the document does not exist.
type ResidenceStore interface {
	ListResidences(ctx context.Context) ([]Residence, error)
	GetResidence(ctx context.Context, id string) (Residence, error)
}

// ResidenceWriter is implemented by stores the seeder can load.
type ResidenceWriter interface {
	PutResidence(ctx context.Context, position int, r Residence) error
}

package domain

import (
	"context"
	"errors"
)

// ErrAddressNotFound is returned by a Geocoder when the address does not
// resolve to any location.
var ErrAddressNotFound = errors.New("address not found")

// ErrAddressResolution marks any failure of the geocoding stage, whether the
// address had no match or the geocoder itself failed. Callers that only care
// that the address could not be resolved match on this; ErrAddressNotFound
// stays available underneath for the no-match case.
var ErrAddressResolution = errors.New("address resolution failed")

// ErrNoDatasetForYear is returned by the dataset catalog when the directory
// listing contains no file for the requested year.
var ErrNoDatasetForYear = errors.New("no dataset file for year")

// Geocoder resolves a free-text US address to a GeoTarget.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeoTarget, error)
}

package utils

import (
	"github.com/mmcloughlin/geohash"
	"github.com/piresc/triptrack/internal/pkg/models"
)

// DefaultGeohashPrecision gives cells of roughly 150m x 150m
const DefaultGeohashPrecision uint = 7

// EncodeCoordinates converts coordinates to a geohash string
func EncodeCoordinates(coords models.Coordinates, precision uint) string {
	return geohash.EncodeWithPrecision(coords.Lat, coords.Lng, precision)
}

package features

import "github.com/lalo8115/proyecto-vuelos/internal/schema"

// Scale standardizes value with the schema's mean and scale for name.
func Scale(s *schema.Schema, name string, value float64) (float64, error) {
	mean, scale, ok := s.ScalerParams(name)
	if !ok {
		return 0, &UnknownScalerFeatureError{Feature: name}
	}
	return (value - mean) / scale, nil
}

// Unscale reverses Scale.
func Unscale(s *schema.Schema, name string, z float64) (float64, error) {
	mean, scale, ok := s.ScalerParams(name)
	if !ok {
		return 0, &UnknownScalerFeatureError{Feature: name}
	}
	return z*scale + mean, nil
}

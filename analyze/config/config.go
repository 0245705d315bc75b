package config

import "fmt"

// AnalysisConfig holds the tunable parameters of a harmonic analysis run
type AnalysisConfig struct {
	// PrecisionThreshold gates acceptance of the cross-validated result
	PrecisionThreshold float64 `json:"precision_threshold" mapstructure:"precision_threshold"`

	// WindowSize and HopSize control temporal segmentation, in beats
	WindowSize float64 `json:"window_size" mapstructure:"window_size"`
	HopSize    float64 `json:"hop_size" mapstructure:"hop_size"`

	// MinConfidence separates "validated" part analyses from
	// "requires_review" ones
	MinConfidence float64 `json:"min_confidence" mapstructure:"min_confidence"`

	// BassValidationWeight is the bass correlation a modal candidate must
	// reach before the detector falls back to bass-weighted re-analysis
	BassValidationWeight float64 `json:"bass_validation_weight" mapstructure:"bass_validation_weight"`

	// CrossValidationRequired enforces the precision gate as a hard error
	CrossValidationRequired bool `json:"cross_validation_required" mapstructure:"cross_validation_required"`
}

// DefaultAnalysisConfig returns the standard analysis parameters
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		PrecisionThreshold:      0.95,
		WindowSize:              4.0,
		HopSize:                 1.0,
		MinConfidence:           0.8,
		BassValidationWeight:    0.7,
		CrossValidationRequired: true,
	}
}

// Validate checks the configuration for usable values
func (c *AnalysisConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %g", c.WindowSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("hop_size must be positive, got %g", c.HopSize)
	}
	if c.PrecisionThreshold < 0 || c.PrecisionThreshold > 1 {
		return fmt.Errorf("precision_threshold must be in [0,1], got %g", c.PrecisionThreshold)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %g", c.MinConfidence)
	}
	if c.BassValidationWeight < 0 || c.BassValidationWeight > 1 {
		return fmt.Errorf("bass_validation_weight must be in [0,1], got %g", c.BassValidationWeight)
	}
	return nil
}

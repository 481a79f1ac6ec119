// internal/acquisition/builder.go
package acquisition

import (
	cfg "github.com/tamzrod/bench-digitizer/internal/config"
)

// RequestFromConfig converts the acquisition section into a Request.
// Assumes config has already passed validation and normalization.
func RequestFromConfig(a cfg.AcquisitionConfig) (Request, error) {
	q, err := ParseQuantity(a.Quantity)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		SampleRate:  a.SampleRate,
		SampleCount: a.SampleCount,
		Quantity:    q,
		Range:       a.Range,
		BufferName:  a.BufferName,
		TriggerOut:  a.TriggerOut,
	}
	if a.BufferMargin != nil {
		req.BufferMargin = *a.BufferMargin
	}

	return req, req.Validate()
}

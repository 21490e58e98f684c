package pipeline

// Sampler accepts every Stride-th frame.
type Sampler struct {
	Stride int
}

// NewSampler returns a Sampler, or a *ConfigError for a stride below 1.
func NewSampler(stride int) (Sampler, error) {
	if stride < 1 {
		return Sampler{}, &ConfigError{Field: "stride", Reason: "must be >= 1"}
	}
	return Sampler{Stride: stride}, nil
}

// Accepts reports whether the frame with the given 1-based index is analyzed.
func (s Sampler) Accepts(frameIndex int) bool {
	return frameIndex%s.Stride == 0
}

package model

// drawableConfig collects the optional settings shared by every drawable variant.
type drawableConfig struct {
	name string
}

// DrawableOption is a functional option for configuring a drawable at construction.
type DrawableOption func(*drawableConfig)

// WithName is an option builder that sets the name of the drawable.
//
// Parameters:
//   - name: the drawable identifier
//
// Returns:
//   - DrawableOption: a function that applies the name option
func WithName(name string) DrawableOption {
	return func(c *drawableConfig) {
		c.name = name
	}
}

func newConfig(defaultName string, options []DrawableOption) drawableConfig {
	cfg := drawableConfig{name: defaultName}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

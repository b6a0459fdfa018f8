package option

type Option func(OptionWith)
type OptionWith interface{ With(...Option) }

// Apply runs opts against target in order.
func Apply(target OptionWith, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(target)
		}
	}
}

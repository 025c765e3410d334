package wallet

// Catalog returns the built-in descriptors for well-known wallets that may
// not be installed. Catalog entries carry no capabilities; a detected or
// registered wallet with the same name replaces its entry.
func Catalog() []*Descriptor {
	return []*Descriptor{
		{
			Name:       "Nightly",
			URL:        "https://nightly.app",
			Generation: GenerationStandard,
			ReadyState: ReadyStateNotDetected,
		},
		{
			Name:       "Petra",
			URL:        "https://petra.app",
			Generation: GenerationStandard,
			ReadyState: ReadyStateNotDetected,
		},
		{
			Name:       "Martian",
			URL:        "https://martianwallet.xyz",
			Generation: GenerationLegacy,
			ReadyState: ReadyStateNotDetected,
		},
	}
}

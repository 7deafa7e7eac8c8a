package runtime

import "embed"

//go:embed censored/*
var censoredFolder embed.FS

// LoadCensoredWords reads the embedded blacklist dictionaries.
func LoadCensoredWords() (*CensoredData, error) {
	return NewCensoredLoader(censoredFolder).LoadAll("censored")
}

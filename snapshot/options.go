package snapshot

import "github.com/hupe1980/meshgo/mesh"

// Options controls how archives are written.
type Options struct {
	// Compression for the archive body.
	Compression Compression
	// Mode of the record stream.
	Mode mesh.Mode
}

// DefaultOptions writes LZ4-compressed binary records.
var DefaultOptions = Options{
	Compression: CompressionLZ4,
	Mode:        mesh.Binary,
}

// ApplyOptions returns DefaultOptions modified by optFns.
func ApplyOptions(optFns ...func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

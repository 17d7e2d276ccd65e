package types

// Stage identifies one pass of the redaction pipeline.
type Stage string

const (
	StageSensitive Stage = "sensitive"
	StageOversized Stage = "oversized"
)

// Encoding is the wire form of a sensitive payload and its tags.
type Encoding string

const (
	EncodingRawHex     Encoding = "raw_hex"
	EncodingHexEncoded Encoding = "hex_encoded"
	EncodingBase64     Encoding = "base64"
)

// RunKind labels the alphabet of an oversized run.
type RunKind string

const (
	RunHex    RunKind = "hex"
	RunBase64 RunKind = "base64"
)

// Encodings returns every supported sensitive encoding in evaluation order.
func Encodings() []Encoding {
	return []Encoding{EncodingRawHex, EncodingHexEncoded, EncodingBase64}
}

// RunKinds returns every supported oversized run kind in evaluation order.
func RunKinds() []RunKind {
	return []RunKind{RunHex, RunBase64}
}

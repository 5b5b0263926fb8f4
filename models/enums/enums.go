package enums

// RequestMode represents the different ways a request body can be encoded
type RequestMode int

// SignatureMethod represents the different OAuth signature methods available to signers
type SignatureMethod int

// OutputFormat represents the different campaign output formats the Ohmage API can produce
type OutputFormat int

const (
	// RequestModeStandard requests are form-urlencoded (query string for GETs)
	RequestModeStandard RequestMode = iota
	// RequestModeMultipart requests carry their parameters as multipart form data
	RequestModeMultipart
)

const (
	// SignatureMethodHMACSHA1 signs the RFC 5849 base string with HMAC-SHA1. This is the default
	SignatureMethodHMACSHA1 SignatureMethod = iota
	// SignatureMethodPlaintext sends the secrets as the signature. Only acceptable over TLS
	SignatureMethodPlaintext
)

const (
	// OutputFormatShort returns the compact campaign representation
	OutputFormatShort OutputFormat = iota
	// OutputFormatLong returns the full campaign representation
	OutputFormatLong
	// OutputFormatXML returns the raw campaign configuration XML
	OutputFormatXML
)

var requestModes = []string{
	"standard",
	"multipart",
}

// Signature method strings are the exact oauth_signature_method wire values
var signatureMethods = []string{
	"HMAC-SHA1",
	"PLAINTEXT",
}

var outputFormats = []string{
	"short",
	"long",
	"xml",
}

func (e RequestMode) String() string {
	return requestModes[e]
}

func (e SignatureMethod) String() string {
	return signatureMethods[e]
}

func (e OutputFormat) String() string {
	return outputFormats[e]
}

// ParseRequestMode takes a given string and returns its RequestMode form, and a boolean indicating whether it was valid
func ParseRequestMode(mode string) (RequestMode, bool) {
	index := getIndex(mode, requestModes)
	if index < 0 {
		return RequestMode(0), false
	}

	return RequestMode(index), true
}

// ParseSignatureMethod takes the given string and returns its SignatureMethod form, and a boolean indicating whether it was valid
func ParseSignatureMethod(method string) (SignatureMethod, bool) {
	index := getIndex(method, signatureMethods)
	if index < 0 {
		return SignatureMethod(0), false
	}

	return SignatureMethod(index), true
}

// ParseOutputFormat takes the given string and returns its OutputFormat form, and a boolean indicating whether it was valid
func ParseOutputFormat(format string) (OutputFormat, bool) {
	index := getIndex(format, outputFormats)
	if index < 0 {
		return OutputFormat(0), false
	}

	return OutputFormat(index), true
}

func getIndex(enumString string, enums []string) int {
	for i, v := range enums {
		if enumString == v {
			return i
		}
	}

	return -1
}

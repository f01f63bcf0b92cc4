package clip

// Kind classifies captured clipboard content for fast filtering.
type Kind string

const (
	KindText   Kind = "text"
	KindURL    Kind = "url"
	KindCode   Kind = "code"
	KindColor  Kind = "color"
	KindEmail  Kind = "email"
	KindPhone  Kind = "phone"
	KindNumber Kind = "number"
	KindJSON   Kind = "json"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
	KindOther  Kind = "other"
)

// KnownKinds lists all valid kind values.
var KnownKinds = []Kind{
	KindText, KindURL, KindCode, KindColor, KindEmail, KindPhone,
	KindNumber, KindJSON, KindFile, KindImage, KindOther,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

package cli

const (
	KindEntity = "Entity"
)

func ValidateResourceKind(kind string) bool {
	switch kind {
	case KindEntity:
		return true
	default:
		return false
	}
}

package passes

// PassType labels a toll crossing relative to the station it happened at.
type PassType string

const (
	// PassTypeHome marks a crossing where the vehicle's tag issuer owns the
	// station.
	PassTypeHome PassType = "home"
	// PassTypeVisitor marks a crossing by a foreign tag; visitor traffic is
	// what generates inter-operator debt.
	PassTypeVisitor PassType = "visitor"
)

// Classify derives the pass type from the tag-issuing operator and the
// station's owning operator. Pure; the label is never stored.
func Classify(tagOperatorID, stationOperatorID string) PassType {
	if tagOperatorID == stationOperatorID {
		return PassTypeHome
	}
	return PassTypeVisitor
}

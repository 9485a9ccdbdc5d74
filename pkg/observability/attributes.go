package observability

import "go.opentelemetry.io/otel/attribute"

var (
	AttrOperation = attribute.Key("reglementations.operation")
	AttrSiren     = attribute.Key("entreprise.siren")
	AttrAnnee     = attribute.Key("entreprise.annee")
	AttrRule      = attribute.Key("reglementation.id")
	AttrStatus    = attribute.Key("reglementation.status")
	AttrRuleset   = attribute.Key("reglementation.ruleset")
)

// Snapshot returns the attributes identifying one evaluated snapshot.
func Snapshot(siren string, annee int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrSiren.String(siren),
		AttrAnnee.Int(annee),
	}
}

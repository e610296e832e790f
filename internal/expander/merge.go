package expander

import "github.com/quantmind-br/hippofactory-go/internal/bindle"

type parcelKey struct {
	digest string
	name   string
}

// MergeParcels collapses parcels with the same digest and name into one,
// keeping first-seen order. The first parcel's label and requires win;
// memberOf lists are concatenated.
func MergeParcels(parcels []bindle.Parcel) []bindle.Parcel {
	index := make(map[parcelKey]int, len(parcels))
	merged := make([]bindle.Parcel, 0, len(parcels))

	for _, p := range parcels {
		key := parcelKey{digest: p.Label.SHA256, name: p.Label.Name}
		if i, ok := index[key]; ok {
			merged[i] = mergeParcel(merged[i], p)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, p)
	}
	return merged
}

func mergeParcel(first, second bindle.Parcel) bindle.Parcel {
	return bindle.Parcel{
		Label:      first.Label,
		Conditions: mergeConditions(first.Conditions, second.Conditions),
	}
}

func mergeConditions(first, second *bindle.Condition) *bindle.Condition {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return &bindle.Condition{
		MemberOf: concatGroups(first.MemberOf, second.MemberOf),
		Requires: first.Requires,
	}
}

func concatGroups(a, b []string) []string {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
